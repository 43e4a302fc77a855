package command

import (
	"flag"
	"strings"
)

type Args []string

func NewArgs(args []string) Args {
	return args[1:]
}

// Filter returns all command line arguments which will match the given flag.FlagSet.
func (a Args) Filter(set *flag.FlagSet) Args {
	if set == nil {
		return a
	}
	var args Args
	for i, arg := range a {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if idx := strings.Index(name, "="); idx > -1 {
			name = name[:idx]
		}
		f := set.Lookup(name)
		if f == nil {
			// Parse answers these with the usage and flag.ErrHelp.
			if name == "h" || name == "help" {
				args = append(args, arg)
			}
			continue
		}

		if strings.Contains(arg, "=") {
			args = append(args, arg)
			continue
		}

		if iFn, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && iFn.IsBoolFlag() {
			args = append(args, arg)
			continue
		}

		if len(a[i:]) > 1 {
			args = append(args, a[i:i+2]...)
		} else {
			args = append(args, arg)
		}
	}
	return args
}

var _ flag.Value = &sliceValue{}

// sliceValue parses a comma separated list.
type sliceValue struct {
	target *[]string
}

func (s *sliceValue) String() string {
	if s.target == nil {
		return ""
	}
	return strings.Join(*s.target, ",")
}

func (s *sliceValue) Set(value string) error {
	var list []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	*s.target = list
	return nil
}
