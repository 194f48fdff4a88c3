package progress

// Package progress carries events from a job worker to a single consumer.
// Percentages never go backwards within a sub-job, routine updates may be
// dropped when the consumer lags, and terminal events are always delivered.
