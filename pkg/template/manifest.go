package template

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Manifest is a template's config.json. Only the fields navigation needs are decoded.
type Manifest struct {
	Handle    string            `json:"handle"`
	Text      string            `json:"text"`
	TextParts map[string]string `json:"text_parts"`
	UsedIn    []UsedIn          `json:"used_in"`
}

// UsedIn is one entry of a shared part's used_in list.
type UsedIn struct {
	Type   string `json:"type"`
	Handle string `json:"handle"`
}

// LoadManifest reads dir/config.json.
func LoadManifest(fs afero.Fs, dir string) (*Manifest, error) {
	b, err := afero.ReadFile(fs, filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, errors.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Errorf("decoding manifest %s: %w", filepath.Join(dir, ManifestFileName), err)
	}
	return &m, nil
}

// Permissions decides whether a template may include a shared part.
type Permissions interface {
	IsAllowed(ctx context.Context, sharedPart string, tmpl Handle) bool
}

// ManifestPermissions grants access according to the shared part's used_in list.
type ManifestPermissions struct {
	ws *Workspace
}

var _ Permissions = (*ManifestPermissions)(nil)

func NewManifestPermissions(ws *Workspace) *ManifestPermissions {
	return &ManifestPermissions{ws: ws}
}

func (me *ManifestPermissions) IsAllowed(ctx context.Context, sharedPart string, tmpl Handle) bool {
	logger := zerolog.Ctx(ctx).With().Str("shared_part", sharedPart).Str("template", tmpl.String()).Logger()

	if tmpl.Type == TypeSharedPart && tmpl.Name == sharedPart {
		return true
	}

	m, err := LoadManifest(me.ws.Fs(), filepath.Join(me.ws.SharedRoot(), sharedPart))
	if err != nil {
		logger.Debug().Err(err).Msg("no usable manifest for shared part")
		return false
	}
	for _, u := range m.UsedIn {
		if t, ok := TypeFromManifest(u.Type); ok && t == tmpl.Type && u.Handle == tmpl.Name {
			return true
		}
	}
	logger.Debug().Msg("shared part not declared for template")
	return false
}
