package config

// Config is the top-level configuration document, optional on the command
// line. Unknown keys are ignored by the YAML decoder.
type Config struct {
	OutputDir   string               `yaml:"output_dir"`
	Defaults    Overrides            `yaml:"defaults"`
	Screenshots map[string]Overrides `yaml:"screenshots"`
	Server      Server               `yaml:"server"`
	HistoryDB   string               `yaml:"history_db"`
}

// Overrides holds per-capture override keys. Pointer fields distinguish
// "key absent" from a zero value, so a key absent at one precedence level
// leaves the lower-precedence value untouched.
type Overrides struct {
	URL            *string  `yaml:"url"`
	ViewportWidth  *int     `yaml:"viewport_width"`
	ViewportHeight *int     `yaml:"viewport_height"`
	FullPage       *bool    `yaml:"full_page"`
	WaitFor        *string  `yaml:"wait_for"`
	Delay          *float64 `yaml:"delay"`
	Output         *string  `yaml:"output"`
	IsErrorPage    *bool    `yaml:"is_error_page"`
	ShowTitleBar   *bool    `yaml:"show_title_bar"`
	TitleBarStyle  *string  `yaml:"title_bar_style"`
}

// Server configures the served application's process lifecycle.
type Server struct {
	Command  string `yaml:"command"`   // default: php -S 127.0.0.1:<port> -t public/
	Port     int    `yaml:"port"`      // default: 8000
	CacheDir string `yaml:"cache_dir"` // default: var/cache
}
