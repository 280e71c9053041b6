//go:build devauth

package authorization

// Built with -tags devauth every decision allows. Never ship this build.
const devBypass = true
