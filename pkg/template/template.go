// Package template knows how templates are laid out on disk: which directory a
// file belongs to, what kind of part it is, and which shared parts a template
// may include.
package template

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var ErrNotTemplate = errors.Base("file is not part of a template")

// Type is the top-level workspace directory a template lives in.
type Type string

const (
	TypeReconciliationText Type = "reconciliation_texts"
	TypeAccountTemplate    Type = "account_templates"
	TypeExportFile         Type = "export_files"
	TypeSharedPart         Type = "shared_parts"
)

// TemplateTypes are the types that have a main file and text parts.
var TemplateTypes = []Type{TypeReconciliationText, TypeAccountTemplate, TypeExportFile}

// usedInTypes maps the manifest spelling of a template type to its directory.
var usedInTypes = map[string]Type{
	"reconciliationText": TypeReconciliationText,
	"accountTemplate":    TypeAccountTemplate,
	"exportFile":         TypeExportFile,
}

// TypeFromManifest converts a used_in type ("reconciliationText") to a Type.
func TypeFromManifest(s string) (Type, bool) {
	t, ok := usedInTypes[s]
	return t, ok
}

type PartKind int

const (
	PartMain PartKind = iota
	PartText
	PartShared
)

func (k PartKind) String() string {
	switch k {
	case PartMain:
		return "main"
	case PartText:
		return "text_part"
	case PartShared:
		return "shared_part"
	}
	return fmt.Sprintf("PartKind(%d)", int(k))
}

func (k PartKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PartKind) UnmarshalText(b []byte) error {
	for _, c := range []PartKind{PartMain, PartText, PartShared} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return errors.Errorf("unknown part kind %q", b)
}

// Handle names a template.
type Handle struct {
	Type Type   `json:"type"`
	Name string `json:"name"`
}

func (h Handle) String() string {
	return string(h.Type) + "/" + h.Name
}

// Identity says where a file sits within a template.
type Identity struct {
	Handle
	PartKind PartKind `json:"part_kind"`
	PartName string   `json:"part_name"`
	// Dir is the directory holding the template's manifest. Includes resolve
	// against it no matter which file they appear in.
	Dir string `json:"dir"`
	// File is the file that was identified.
	File string `json:"file"`
}
