package repository

import (
	"context"                          // Context for store operations
	"freelance_market/internal/domain" // Domain models
	"slices"                           // Sorting and cloning
	"sync"                             // Mutex
	"time"                             // Timestamps

	"github.com/google/uuid" // Identifiers
)

// MemoryStore keeps users and jobs in process memory. It backs the
// "memory" database driver and the tests; one mutex guards every map so
// conditional writes behave like the SQL ones.
type MemoryStore struct {
	mu    sync.Mutex                // Guards every field below
	users map[uuid.UUID]domain.User // Users by ID
	jobs  map[uuid.UUID]*domain.Job // Jobs by ID, bids inline
	seq   map[uuid.UUID]int         // Insertion order of jobs
	next  int                       // Last sequence number handed out
	now   func() time.Time          // Clock
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[uuid.UUID]domain.User),
		jobs:  make(map[uuid.UUID]*domain.Job),
		seq:   make(map[uuid.UUID]int),
		now:   time.Now,
	}
}

// Jobs returns the JobRepository view of the store
func (s *MemoryStore) Jobs() JobRepository { return memoryJobs{s} }

// Users returns the UserRepository view of the store
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// cloneJob copies j so callers never share memory with the store
func cloneJob(j *domain.Job) *domain.Job {
	c := *j
	if j.FreelancerID != nil {
		id := *j.FreelancerID
		c.FreelancerID = &id
	}
	c.Bids = slices.Clone(j.Bids)
	return &c
}

type memoryJobs struct{ s *MemoryStore }

func (m memoryJobs) Create(_ context.Context, job *domain.Job) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if _, ok := m.s.jobs[job.ID]; ok {
		return ErrDuplicate // Primary key taken
	}
	now := m.s.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = job.CreatedAt
	if job.Version == 0 {
		job.Version = 1
	}
	m.s.jobs[job.ID] = cloneJob(job)
	m.s.next++
	m.s.seq[job.ID] = m.s.next
	return nil
}

func (m memoryJobs) FindByID(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	job, ok := m.s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneJob(job), nil
}

func (m memoryJobs) List(_ context.Context, q JobQuery) ([]domain.Job, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []domain.Job{}
	for _, j := range m.s.jobs {
		if q.Status != "" && j.Status != q.Status {
			continue
		}
		if q.OwnerID != nil && j.UserID != *q.OwnerID {
			continue
		}
		if q.ParticipantID != nil && j.UserID != *q.ParticipantID &&
			(j.FreelancerID == nil || *j.FreelancerID != *q.ParticipantID) {
			continue
		}
		if q.JobType != "" && j.JobType != q.JobType {
			continue
		}
		if q.MinBudget > 0 && j.Budget < q.MinBudget {
			continue
		}
		if q.MaxBudget > 0 && j.Budget > q.MaxBudget {
			continue
		}
		c := cloneJob(j)
		c.Bids = nil // Listings never carry bids
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b domain.Job) int {
		return m.s.seq[b.ID] - m.s.seq[a.ID] // Newest first
	})
	return out, nil
}

func (m memoryJobs) Transition(_ context.Context, t Transition) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	j, ok := m.s.jobs[t.JobID]
	if !ok {
		return ErrConflict // Deleted meanwhile
	}
	if len(t.From) > 0 && !slices.Contains(t.From, j.Status) {
		return ErrConflict // Status moved on
	}
	if t.OwnerID != nil && j.UserID != *t.OwnerID {
		return ErrConflict // Not the owner
	}
	j.Status = t.To
	if t.FreelancerID != nil {
		id := *t.FreelancerID
		j.FreelancerID = &id
	}
	j.Version++
	j.UpdatedAt = m.s.now()
	return nil
}

func (m memoryJobs) AddBid(_ context.Context, bid *domain.Bid) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	j, ok := m.s.jobs[bid.JobID]
	if !ok || j.Status != domain.JobActive {
		return ErrConflict // Job gone or closed
	}
	if j.HasBidFrom(bid.FreelancerID) {
		return ErrDuplicate // Same as the unique index
	}
	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}
	j.Bids = append(j.Bids, *bid)
	j.Version++
	j.UpdatedAt = m.s.now()
	return nil
}

func (m memoryJobs) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	j, ok := m.s.jobs[id]
	if !ok || j.UserID != ownerID {
		return ErrNotFound
	}
	delete(m.s.jobs, id)
	delete(m.s.seq, id)
	return nil
}

func (m memoryJobs) DeleteByOwner(_ context.Context, ownerID uuid.UUID, status domain.JobStatus) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var removed int64 // Jobs deleted
	for id, j := range m.s.jobs {
		if j.UserID == ownerID && j.Status == status {
			delete(m.s.jobs, id) // Bids live inside the job
			delete(m.s.seq, id)
			removed++
		}
	}
	return removed, nil
}

func (m memoryJobs) DeleteAll(_ context.Context) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	clear(m.s.jobs)
	clear(m.s.seq)
	return nil
}

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	for _, u := range m.s.users {
		if u.ID == user.ID || u.Email == user.Email {
			return ErrDuplicate // Unique ID and email
		}
	}
	now := m.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.AccessLevel == 0 {
		user.AccessLevel = domain.RoleFreelancer // Column default
	}
	m.s.users[user.ID] = *user
	return nil
}

func (m memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m memoryUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryUsers) List(_ context.Context) ([]domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]domain.User, 0, len(m.s.users))
	for _, u := range m.s.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b domain.User) int {
		return a.CreatedAt.Compare(b.CreatedAt) // Oldest first, like the SQL order
	})
	return out, nil
}

func (m memoryUsers) Names(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.PersonName, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	names := make(map[uuid.UUID]domain.PersonName, len(ids))
	for _, id := range ids {
		if u, ok := m.s.users[id]; ok {
			names[id] = u.Name() // Unknown IDs are skipped
		}
	}
	return names, nil
}

func (m memoryUsers) Update(_ context.Context, id uuid.UUID, upd UserUpdate) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.ProfilePicture != nil {
		u.ProfilePicture = *upd.ProfilePicture
	}
	u.UpdatedAt = m.s.now()
	m.s.users[id] = u
	return nil
}

func (m memoryUsers) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.s.users, id)
	return nil
}

func (m memoryUsers) DeleteAll(_ context.Context) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	clear(m.s.users)
	return nil
}
