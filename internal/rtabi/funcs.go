package rtabi

// Program entry point.
const EntryPoint = "main"

// Header names understood by #include.
const (
	HeaderStdio   = "stdio.h"
	HeaderStdlib  = "stdlib.h"
	HeaderString  = "string.h"
	HeaderCtype   = "ctype.h"
	HeaderMath    = "math.h"
	HeaderAssert  = "assert.h"
	HeaderDraw    = "draw.h"
	HeaderLearnCS = "learncs.h"
)

// Headers returns every header name in registration order.
func Headers() []string {
	return []string{
		HeaderStdio,
		HeaderStdlib,
		HeaderString,
		HeaderCtype,
		HeaderMath,
		HeaderAssert,
		HeaderDraw,
		HeaderLearnCS,
	}
}
