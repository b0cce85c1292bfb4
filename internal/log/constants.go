package log

const (
	Args     = "args"
	Cmd      = "cmd"
	Count    = "count"
	Debounce = "debounce"
	Dir      = "dir"
	Error    = "error"
	ExitCode = "exit_code"
	Name     = "name"
	Path     = "path"
	Version  = "version"
)
