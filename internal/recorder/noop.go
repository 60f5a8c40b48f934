package recorder

// NoopRecorder discards all records. Used when no database path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (*NoopRecorder) RecordRun(*RunRecord) error { return nil }
func (*NoopRecorder) RecordBet(*BetRecord) error { return nil }
func (*NoopRecorder) Close() error               { return nil }
