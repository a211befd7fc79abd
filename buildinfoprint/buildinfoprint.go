// buildinfoprint is imported for the side effect of printing build
// provenance to stderr.
package buildinfoprint

import "github.com/carbocation/singlecell/buildinfo"

func init() {
	buildinfo.PrintToStdErr()
}
