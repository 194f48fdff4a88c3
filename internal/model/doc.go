package model

// Package model defines the domain data shared across the app: download jobs,
// stream descriptors, progress events and outcomes. Values are plain structs
// so they can cross goroutines by copy.
