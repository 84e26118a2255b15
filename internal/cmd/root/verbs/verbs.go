package verbs

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	Get       = VerbValue("get")
	Create    = VerbValue("create")
	Update    = VerbValue("update")
	Delete    = VerbValue("delete")
	List      = VerbValue("list")
	Login     = VerbValue("login")
	Logout    = VerbValue("logout")
	View      = VerbValue("view")
	Listen    = VerbValue("listen")
	Block     = VerbValue("block")
	Unblock   = VerbValue("unblock")
	Status    = VerbValue("status")
	Action    = VerbValue("action")
	Upload    = VerbValue("upload")
	Resources = VerbValue("resources")
	Profiles  = VerbValue("profiles")
)

// Empty type to represent the _type_ Verb. Genesis is to support a key in a Context
type VerbKey struct{}

// Verb is a global instance of the VerbKey type
var Verb = VerbKey{}

// Will represent a specific Verb (get, create, update, delete, etc)
type VerbValue string

func (v VerbValue) String() string {
	return string(v)
}

// ResourceArgs returns an Args validator for commands addressed as
// "<role> <resource> [id] ...". extra names the positional arguments that
// follow the resource and are all required.
func ResourceArgs(extra ...string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		want := 2 + len(extra)
		if len(args) == want {
			return nil
		}
		usage := append([]string{"<role>", "<resource>"}, wrap(extra)...)
		return fmt.Errorf("expected %d arguments %v, received %d", want, usage, len(args))
	}
}

func wrap(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "<" + n + ">"
	}
	return out
}
