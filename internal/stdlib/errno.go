package stdlib

import "github.com/corytodd/picoc/internal/interp"

// errnoLibrary is a "header of constants" in the purest sense: no
// functions at all, just the E* codes scripts test against after a
// library call (picoc's errno.h has the same shape).
func errnoLibrary() *interp.Library {
	return &interp.Library{
		Name: "errno.h",
		Consts: []interp.LibraryConst{
			{Name: "errno", Value: 0},
			{Name: "EPERM", Value: 1},
			{Name: "ENOENT", Value: 2},
			{Name: "EIO", Value: 5},
			{Name: "ENOMEM", Value: 12},
			{Name: "EACCES", Value: 13},
			{Name: "EEXIST", Value: 17},
			{Name: "EINVAL", Value: 22},
			{Name: "ERANGE", Value: 34},
		},
	}
}
