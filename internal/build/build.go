package build

// Info carries build metadata stamped at link time.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Empty type to represent the _type_ Info. Genesis is to support a key in a Context
type Key struct{}

// InfoKey is a global instance of the Key type
var InfoKey = Key{}

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Current returns the Info populated through -ldflags.
func Current() *Info {
	return &Info{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}
