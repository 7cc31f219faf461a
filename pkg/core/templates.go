package core

// Template is a named starting point for a new note's first page.
type Template struct {
	Name    string
	Content string
}

// Templates lists the built-in quick-start templates.
var Templates = []Template{
	{Name: "Blank", Content: ""},
	{Name: "3-Point Sermon", Content: "## 3-Point Sermon\n\n"},
	{Name: "Expository", Content: "## Expository\n\n"},
}

// TemplateByName returns the template with the given name, or the blank one.
func TemplateByName(name string) Template {
	for _, t := range Templates {
		if t.Name == name {
			return t
		}
	}
	return Templates[0]
}
