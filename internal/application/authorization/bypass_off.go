//go:build !devauth

package authorization

const devBypass = false
