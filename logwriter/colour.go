package logwriter

import (
	"fmt"

	"github.com/fatih/color"
)

type colourFunc func(format string, a ...interface{}) string

var roleColours = map[string]colourFunc{
	"producer":    color.GreenString,
	"consumer":    color.CyanString,
	"philosopher": color.YellowString,
	"agent":       color.MagentaString,
	"broker":      color.BlueString,
	"brewer":      color.GreenString,
}

// Role colours "role id" by role. Unknown roles are left plain.
func Role(role string, id int) string {
	if c, ok := roleColours[role]; ok {
		return c("%s %d", role, id)
	}
	return fmt.Sprintf("%s %d", role, id)
}

// OK, Warn and Fail colour summary lines.
var (
	OK   = color.GreenString
	Warn = color.YellowString
	Fail = color.RedString
)
