package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"freelance_market/internal/domain"
	"freelance_market/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *repository.MemoryStore
	jobs  *JobService
}

func newFixture() *fixture {
	store := repository.NewMemoryStore()
	return &fixture{store: store, jobs: NewJobService(store.Jobs(), store.Users())}
}

func (f *fixture) user(t *testing.T, first string, role domain.Role) uuid.UUID {
	t.Helper()
	u := &domain.User{
		ID:          uuid.New(),
		FirstName:   first,
		LastName:    "Tester",
		Email:       first + "@test.com",
		Password:    "hash",
		AccessLevel: role,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u.ID
}

func (f *fixture) job(t *testing.T, owner uuid.UUID, jobType string, budget float64) *domain.Job {
	t.Helper()
	job, err := f.jobs.CreateJob(context.Background(), owner, CreateJobInput{
		Title:       "Logo",
		Description: "Design a logo",
		JobType:     jobType,
		Budget:      budget,
		Img:         "logo.png",
	})
	require.NoError(t, err)
	return job
}

func TestCreateJob(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)

	job := f.job(t, client, "design", 100)
	assert.Equal(t, domain.JobActive, job.Status)
	assert.Equal(t, client, job.UserID)
	assert.Nil(t, job.FreelancerID)
	assert.NotNil(t, job.Bids)
	assert.Empty(t, job.Bids)

	valid := CreateJobInput{Title: "t", Description: "d", JobType: "web", Budget: 10, Img: "i.png"}
	tests := []struct {
		name   string
		mutate func(in *CreateJobInput)
	}{
		{"missing title", func(in *CreateJobInput) { in.Title = "" }},
		{"blank description", func(in *CreateJobInput) { in.Description = "   " }},
		{"missing job type", func(in *CreateJobInput) { in.JobType = "" }},
		{"missing img", func(in *CreateJobInput) { in.Img = "" }},
		{"zero budget", func(in *CreateJobInput) { in.Budget = 0 }},
		{"negative budget", func(in *CreateJobInput) { in.Budget = -5 }},
		{"NaN budget", func(in *CreateJobInput) { in.Budget = math.NaN() }},
		{"infinite budget", func(in *CreateJobInput) { in.Budget = math.Inf(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.jobs.CreateJob(ctx, client, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := f.jobs.CreateJob(ctx, uuid.New(), valid)
	assert.ErrorIs(t, err, ErrForbidden, "unknown actor")
}

func TestListActiveJobs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	freelancer := f.user(t, "fred", domain.RoleFreelancer)

	empty, err := f.jobs.ListActiveJobs(ctx, JobFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	web := f.job(t, client, "web", 100)
	design := f.job(t, client, "design", 500)
	_, err = f.jobs.PlaceBid(ctx, freelancer, web.ID, 90)
	require.NoError(t, err)

	all, err := f.jobs.ListActiveJobs(ctx, JobFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, design.ID, all[0].ID)
	require.NotNil(t, all[0].Client)
	assert.Equal(t, "carol", all[0].Client.FirstName)
	for _, v := range all {
		assert.Empty(t, v.Bids, "listings never expose bids")
	}

	filtered, err := f.jobs.ListActiveJobs(ctx, JobFilter{JobType: "web", MaxBudget: 200})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, web.ID, filtered[0].ID)

	_, err = f.jobs.ListActiveJobs(ctx, JobFilter{MinBudget: 300, MaxBudget: 100})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.jobs.ListActiveJobs(ctx, JobFilter{MinBudget: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlaceBid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	freelancer := f.user(t, "fred", domain.RoleFreelancer)
	job := f.job(t, client, "web", 100)

	t.Run("invalid amount", func(t *testing.T) {
		for _, amount := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			_, err := f.jobs.PlaceBid(ctx, freelancer, job.ID, amount)
			assert.ErrorIs(t, err, ErrValidation)
		}
	})

	t.Run("clients cannot bid", func(t *testing.T) {
		other := f.user(t, "cliff", domain.RoleClient)
		_, err := f.jobs.PlaceBid(ctx, other, job.ID, 50)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown job", func(t *testing.T) {
		_, err := f.jobs.PlaceBid(ctx, freelancer, uuid.New(), 50)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("records bid once", func(t *testing.T) {
		updated, err := f.jobs.PlaceBid(ctx, freelancer, job.ID, 80)
		require.NoError(t, err)
		require.Len(t, updated.Bids, 1)
		assert.Equal(t, freelancer, updated.Bids[0].FreelancerID)
		assert.Equal(t, 80.0, updated.Bids[0].Amount)

		_, err = f.jobs.PlaceBid(ctx, freelancer, job.ID, 70)
		assert.ErrorIs(t, err, ErrDuplicateBid)

		stored, err := f.store.Jobs().FindByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Bids, 1)
	})

	t.Run("own job", func(t *testing.T) {
		own := f.job(t, freelancer, "web", 100)
		_, err := f.jobs.PlaceBid(ctx, freelancer, own.ID, 50)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestPlaceBidOnlyWhileActive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	fred := f.user(t, "fred", domain.RoleFreelancer)
	gina := f.user(t, "gina", domain.RoleFreelancer)
	job := f.job(t, client, "web", 100)

	_, err := f.jobs.PlaceBid(ctx, fred, job.ID, 80)
	require.NoError(t, err)
	_, err = f.jobs.AcceptFreelancer(ctx, client, job.ID, fred)
	require.NoError(t, err)

	_, err = f.jobs.PlaceBid(ctx, gina, job.ID, 60)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestListBids(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	fred := f.user(t, "fred", domain.RoleFreelancer)
	job := f.job(t, client, "web", 100)
	_, err := f.jobs.PlaceBid(ctx, fred, job.ID, 80)
	require.NoError(t, err)

	bids, err := f.jobs.ListBids(ctx, client, job.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, fred, bids[0].FreelancerID)
	assert.Equal(t, 80.0, bids[0].Amount)
	require.NotNil(t, bids[0].Freelancer)
	assert.Equal(t, "fred", bids[0].Freelancer.FirstName)

	_, err = f.jobs.ListBids(ctx, fred, job.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.jobs.ListBids(ctx, client, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptFreelancer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	fred := f.user(t, "fred", domain.RoleFreelancer)
	gina := f.user(t, "gina", domain.RoleFreelancer)
	job := f.job(t, client, "web", 100)
	_, err := f.jobs.PlaceBid(ctx, fred, job.ID, 80)
	require.NoError(t, err)

	_, err = f.jobs.AcceptFreelancer(ctx, fred, job.ID, fred)
	assert.ErrorIs(t, err, ErrForbidden, "only the owner accepts")

	_, err = f.jobs.AcceptFreelancer(ctx, client, job.ID, gina)
	assert.ErrorIs(t, err, ErrValidation, "gina never bid")
	unchanged, err := f.store.Jobs().FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobActive, unchanged.Status, "rejected accept leaves the job open")
	assert.Nil(t, unchanged.FreelancerID)

	_, err = f.jobs.AcceptFreelancer(ctx, client, uuid.New(), fred)
	assert.ErrorIs(t, err, ErrNotFound)

	accepted, err := f.jobs.AcceptFreelancer(ctx, client, job.ID, fred)
	require.NoError(t, err)
	assert.Equal(t, domain.JobAccepted, accepted.Status)
	require.NotNil(t, accepted.FreelancerID)
	assert.Equal(t, fred, *accepted.FreelancerID)

	_, err = f.jobs.AcceptFreelancer(ctx, client, job.ID, fred)
	assert.ErrorIs(t, err, ErrInvalidState, "already accepted")

	active, err := f.jobs.ListActiveJobs(ctx, JobFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	for _, id := range []uuid.UUID{client, fred} {
		ongoing, err := f.jobs.ListOngoingJobs(ctx, id)
		require.NoError(t, err)
		require.Len(t, ongoing, 1)
		require.NotNil(t, ongoing[0].Freelancer)
		assert.Equal(t, "fred", ongoing[0].Freelancer.FirstName)
	}
	ongoing, err := f.jobs.ListOngoingJobs(ctx, gina)
	require.NoError(t, err)
	assert.Empty(t, ongoing)
}

func TestAcceptFreelancerConcurrent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	job := f.job(t, client, "web", 100)

	bidders := make([]uuid.UUID, 8)
	for i := range bidders {
		bidders[i] = f.user(t, "fl"+uuid.NewString()[:8], domain.RoleFreelancer)
		_, err := f.jobs.PlaceBid(ctx, bidders[i], job.ID, float64(50+i))
		require.NoError(t, err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []uuid.UUID
	)
	for _, b := range bidders {
		wg.Add(1)
		go func(b uuid.UUID) {
			defer wg.Done()
			_, err := f.jobs.AcceptFreelancer(ctx, client, job.ID, b)
			if err == nil {
				mu.Lock()
				winners = append(winners, b)
				mu.Unlock()
				return
			}
			assert.True(t, errorsIsAny(err, ErrConflict, ErrInvalidState), "unexpected error %v", err)
		}(b)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	stored, err := f.store.Jobs().FindByID(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FreelancerID)
	assert.Equal(t, winners[0], *stored.FreelancerID)
}

func TestPlaceBidConcurrentSameFreelancer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	fred := f.user(t, "fred", domain.RoleFreelancer)
	job := f.job(t, client, "web", 100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(amount float64) {
			defer wg.Done()
			_, err := f.jobs.PlaceBid(ctx, fred, job.ID, amount)
			if err != nil {
				assert.ErrorIs(t, err, ErrDuplicateBid)
			}
		}(float64(10 + i))
	}
	wg.Wait()

	stored, err := f.store.Jobs().FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Bids, 1)
}

func TestCompleteJob(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	fred := f.user(t, "fred", domain.RoleFreelancer)
	job := f.job(t, client, "web", 100)

	_, err := f.jobs.CompleteJob(ctx, fred, job.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
	_, err = f.jobs.CompleteJob(ctx, client, uuid.New())
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)

	done, err := f.jobs.CompleteJob(ctx, client, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobComplete, done.Status)

	again, err := f.jobs.CompleteJob(ctx, client, job.ID)
	require.NoError(t, err, "completing twice is allowed")
	assert.Equal(t, domain.JobComplete, again.Status)
}

func TestDeleteJob(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	fred := f.user(t, "fred", domain.RoleFreelancer)
	job := f.job(t, client, "web", 100)

	assert.ErrorIs(t, f.jobs.DeleteJob(ctx, fred, job.ID), ErrNotFoundOrForbidden)
	require.NoError(t, f.jobs.DeleteJob(ctx, client, job.ID))
	assert.ErrorIs(t, f.jobs.DeleteJob(ctx, client, job.ID), ErrNotFoundOrForbidden)

	owned, err := f.jobs.ListOwnedActiveJobs(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestJobLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	fred := f.user(t, "fred", domain.RoleFreelancer)

	job := f.job(t, client, "web", 100)
	owned, err := f.jobs.ListOwnedActiveJobs(ctx, client)
	require.NoError(t, err)
	require.Len(t, owned, 1)

	_, err = f.jobs.PlaceBid(ctx, fred, job.ID, 80)
	require.NoError(t, err)
	_, err = f.jobs.AcceptFreelancer(ctx, client, job.ID, fred)
	require.NoError(t, err)
	_, err = f.jobs.CompleteJob(ctx, client, job.ID)
	require.NoError(t, err)

	for _, id := range []uuid.UUID{client, fred} {
		ongoing, err := f.jobs.ListOngoingJobs(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, ongoing)
	}
	stored, err := f.store.Jobs().FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobComplete, stored.Status)
	require.NotNil(t, stored.FreelancerID)
	assert.Equal(t, fred, *stored.FreelancerID)
}

func TestListingsHideBids(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	fred := f.user(t, "fred", domain.RoleFreelancer)
	job := f.job(t, client, "web", 100)
	_, err := f.jobs.PlaceBid(ctx, fred, job.ID, 80)
	require.NoError(t, err)

	created, err := json.Marshal(f.job(t, client, "web", 50))
	require.NoError(t, err)
	assert.Contains(t, string(created), `"bids":[]`, "single jobs always carry a bid array")

	active, err := f.jobs.ListActiveJobs(ctx, JobFilter{})
	require.NoError(t, err)
	require.Len(t, active, 2)
	listed, err := json.Marshal(active)
	require.NoError(t, err)
	assert.NotContains(t, string(listed), `"bids"`)
}

func TestActorVariants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	clientID := f.user(t, "carol", domain.RoleClient)
	fredID := f.user(t, "fred", domain.RoleFreelancer)
	client, err := f.store.Users().FindByID(ctx, clientID)
	require.NoError(t, err)
	fred, err := f.store.Users().FindByID(ctx, fredID)
	require.NoError(t, err)

	job, err := f.jobs.CreateJobAs(ctx, client, CreateJobInput{Title: "t", Description: "d", JobType: "web", Budget: 10, Img: "i.png"})
	require.NoError(t, err)
	assert.Equal(t, clientID, job.UserID)
	_, err = f.jobs.CreateJobAs(ctx, nil, CreateJobInput{Title: "t", Description: "d", JobType: "web", Budget: 10, Img: "i.png"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.jobs.CreateJobAs(ctx, client, CreateJobInput{Title: "t"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.jobs.PlaceBidAs(ctx, client, job.ID, 5)
	assert.ErrorIs(t, err, ErrForbidden, "clients cannot bid")
	_, err = f.jobs.PlaceBidAs(ctx, nil, job.ID, 5)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.jobs.PlaceBidAs(ctx, fred, job.ID, -1)
	assert.ErrorIs(t, err, ErrValidation)
	updated, err := f.jobs.PlaceBidAs(ctx, fred, job.ID, 5)
	require.NoError(t, err)
	require.Len(t, updated.Bids, 1)
	assert.Equal(t, fredID, updated.Bids[0].FreelancerID)
}

func TestDeleteOwnedActiveJobs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	client := f.user(t, "carol", domain.RoleClient)
	fred := f.user(t, "fred", domain.RoleFreelancer)
	open := f.job(t, client, "web", 100)
	hired := f.job(t, client, "web", 200)
	_, err := f.jobs.PlaceBid(ctx, fred, hired.ID, 150)
	require.NoError(t, err)
	_, err = f.jobs.AcceptFreelancer(ctx, client, hired.ID, fred)
	require.NoError(t, err)

	n, err := f.jobs.DeleteOwnedActiveJobs(ctx, client)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = f.store.Jobs().FindByID(ctx, open.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	ongoing, err := f.jobs.ListOngoingJobs(ctx, fred)
	require.NoError(t, err)
	assert.Len(t, ongoing, 1, "accepted work survives")
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
