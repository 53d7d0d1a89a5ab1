// Package resources stores small files that persist between sessions: the
// window geometry, the last kickstart used and an optional startup script.
//
// Release builds (built with the "release" tag) keep resources in the user's
// configuration directory. Development builds keep them in .amichip in the
// working directory.
//
// If a file named portable.txt is in the same directory as the program
// binary then resources are kept in amichip_UserData alongside the binary
// regardless of how the program was built.
package resources
