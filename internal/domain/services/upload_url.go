package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ochairo/tpa-symbols/internal/domain/entities"
)

// ParseUploadURL derives the TPA project from an upload URL of the form
// https://{host}/{projectUUID}/upload and the configured app identifier
func ParseUploadURL(uploadURL, appIdentifier string) (entities.Project, error) {
	if strings.TrimSpace(uploadURL) == "" {
		return entities.Project{}, entities.Errorf(entities.KindConfig, "", "upload URL is empty")
	}

	u, err := url.Parse(uploadURL)
	if err != nil {
		return entities.Project{}, entities.NewError(entities.KindConfig, "invalid upload URL", uploadURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return entities.Project{}, entities.NewError(entities.KindConfig, "invalid upload URL", uploadURL,
			errors.New("missing scheme or host"))
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-2] == "" {
		return entities.Project{}, entities.NewError(entities.KindConfig, "invalid upload URL", uploadURL,
			errors.New("path must end in /{projectUUID}/{segment}"))
	}

	return entities.Project{
		Host:          fmt.Sprintf("%s://%s", u.Scheme, u.Host),
		ProjectUUID:   segments[len(segments)-2],
		AppIdentifier: appIdentifier,
	}, nil
}
