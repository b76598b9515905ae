package initialize

import (
	"fmt"
	"strings"
)

// Template is a starting configuration for a package manager.
type Template struct {
	Name        string
	Description string
	Command     []string
}

// AllTemplates returns all available templates.
func AllTemplates() []Template {
	return []Template{
		{
			Name:        "npm",
			Description: "Publish with npm",
			Command:     []string{"npm", "publish", "--registry", "{registry}"},
		},
		{
			Name:        "pnpm",
			Description: "Publish with pnpm, which resolves workspace: ranges on pack",
			Command:     []string{"pnpm", "publish", "--registry", "{registry}", "--no-git-checks"},
		},
		{
			Name:        "yarn",
			Description: "Publish with yarn berry",
			Command:     []string{"yarn", "npm", "publish"},
		},
	}
}

// TemplateNames returns the names of all available templates.
func TemplateNames() []string {
	templates := AllTemplates()
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	return names
}

// GetTemplate returns the template with the given name, or an error if not found.
func GetTemplate(name string) (*Template, error) {
	for _, t := range AllTemplates() {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(TemplateNames(), ", "))
}
