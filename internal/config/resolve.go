package config

import "github.com/mleclerc/gitshot/internal/plan"

// Resolve overlays configuration onto a capture spec in place.
// Precedence, low to high: compiled-in spec defaults, the `defaults`
// section, the named `screenshots[name]` entry. Each key is applied
// independently; a key absent at one level leaves the lower-precedence
// value untouched. A missing named entry is not an error.
func (c *Config) Resolve(spec *plan.CaptureSpec) {
	apply(spec, c.Defaults)
	if o, ok := c.Screenshots[spec.Name]; ok {
		apply(spec, o)
	}
}

// CustomOutput returns the configured custom output path for a capture
// name, or "" when the capture uses the default output directory.
func (c *Config) CustomOutput(name string) string {
	if o, ok := c.Screenshots[name]; ok && o.Output != nil {
		return *o.Output
	}
	return ""
}

func apply(spec *plan.CaptureSpec, o Overrides) {
	if o.URL != nil {
		spec.URL = *o.URL
	}
	if o.ViewportWidth != nil {
		spec.ViewportWidth = *o.ViewportWidth
	}
	if o.ViewportHeight != nil {
		spec.ViewportHeight = *o.ViewportHeight
	}
	if o.FullPage != nil {
		spec.FullPage = *o.FullPage
	}
	if o.WaitFor != nil {
		spec.WaitFor = *o.WaitFor
	}
	if o.Delay != nil {
		spec.Delay = *o.Delay
	}
	if o.Output != nil {
		spec.OutputPath = *o.Output
	}
	if o.IsErrorPage != nil {
		spec.IsErrorPage = *o.IsErrorPage
	}
	if o.ShowTitleBar != nil {
		spec.ShowTitleBar = *o.ShowTitleBar
	}
	if o.TitleBarStyle != nil {
		spec.TitleBarStyle = *o.TitleBarStyle
	}
}
