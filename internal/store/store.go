package store

// Store aggregates the per-entity stores. Job state is in-memory only; the
// store is injected into the orchestrator and the service layer so tests can
// run against a fresh instance.
type Store interface {
	Job() Job
	Close() error
}

type DataStore struct {
	job Job
}

func NewStore() Store {
	return &DataStore{
		job: NewJobStore(),
	}
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) Close() error {
	return nil
}
