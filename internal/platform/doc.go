package platform

// Package platform contains OS-specific helpers: standard directories, file
// placement and revealing finished downloads in the system file manager.
