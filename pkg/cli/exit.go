package cli

import "github.com/vishalbelsare/sindy-3/pkg/sindyerr"

// ExitCode classifies err into the process exit code cmd/sindy should
// return, following the same per-error-kind numbering scheme as
// pkg/cli/exit/codes.go, scaled down to the error kinds sindyerr
// actually defines.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case sindyerr.IsConfiguration(err):
		return 4 // mirrors exit.CommandLineFlagError
	case sindyerr.IsInput(err):
		return 1
	case sindyerr.IsCancelled(err):
		return 3 // mirrors exit.Interrupted
	case sindyerr.IsInternalInvariant(err):
		return 2 // mirrors exit.UnspecifiedGoPanic
	case sindyerr.IsSubstrateFailure(err):
		return 7 // mirrors exit.FatalError
	default:
		return 1
	}
}
