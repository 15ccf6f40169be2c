package assets

import (
	"fmt"
	"io"
)

// DossierTemplate is the top-level data structure for dossier templates
type DossierTemplate struct {
	Title       string
	Description string
	TypeName    string
	Characters  []DossierCharacter
}

// DossierCharacter represents a single character profile for template rendering
type DossierCharacter struct {
	Name            string
	Aliases         []string
	IsMainCharacter bool
	Age             string
	Gender          string
	Outgoing        []DossierEdge
	Incoming        []DossierEdge
}

// DossierEdge is one relationship line. Name is the far endpoint's name,
// regardless of which side of the edge the profiled character sits on.
type DossierEdge struct {
	Name        string
	Type        string
	Description string
}

func WriteDossier(output io.Writer, templatePath string, templateData DossierTemplate) error {
	tmpl, err := parseTemplateWithFallback(templatePath, fallbackDossierTemplate)
	if err != nil {
		return fmt.Errorf("parseTemplateWithFallback() > %w", err)
	}
	if err := tmpl.Execute(output, templateData); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
