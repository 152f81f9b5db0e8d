package api

import (
	"context"                           // Context for Redis operations
	"freelance_market/internal/service" // Job lifecycle engine
	"freelance_market/internal/utils"   // Cache helpers
	"net/http"                          // HTTP status codes
	"strconv"                           // String conversion
	"time"                              // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

const (
	activeJobsPrefix = "jobs:active:"    // Prefix of every cached active listing
	activeJobsGenKey = "gen:jobs:active" // Generation counter baked into listing keys
)

// CreateJobRequest represents a new job posting
type CreateJobRequest struct {
	Title       string  `json:"title" binding:"required"`       // Job title
	Description string  `json:"description" binding:"required"` // Job description
	JobType     string  `json:"jobType" binding:"required"`     // Job category
	Budget      float64 `json:"budget" binding:"required,gt=0"` // Offered budget
	Img         string  `json:"img" binding:"required"`         // Image reference
}

// BidRequest represents a bid on a job
type BidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"` // Bid amount
}

// jobsResponse is the cached shape of a listing
type jobsResponse struct {
	Jobs    []service.JobView `json:"jobs"`              // Jobs with party names
	Message string            `json:"message,omitempty"` // Set when empty
}

// invalidateListings retires every cached active listing after a job mutation.
// A listing read before the bump can still be written afterwards, but only
// under the old generation where nobody looks it up again.
func invalidateListings(rdb *redis.Client) {
	ctx := context.Background() // Context for Redis operations
	if err := utils.BumpCacheGeneration(ctx, rdb, activeJobsGenKey); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to bump job listing generation")
	}
	if err := utils.DeleteCachePrefix(ctx, rdb, activeJobsPrefix); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to invalidate job listing cache")
	}
}

// listingsKey builds the cache key of one filtered listing in generation gen
func listingsKey(gen int64, filter service.JobFilter) string {
	return activeJobsPrefix + "gen=" + strconv.FormatInt(gen, 10) +
		":type=" + filter.JobType +
		":min=" + strconv.FormatFloat(filter.MinBudget, 'f', -1, 64) +
		":max=" + strconv.FormatFloat(filter.MaxBudget, 'f', -1, 64)
}

// ListActiveJobsHandler returns every active job, optionally filtered by jobType and budget range
func ListActiveJobsHandler(jobs *service.JobService, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter service.JobFilter
		filter.JobType = c.Query("jobType") // Exact job type match
		for key, dst := range map[string]*float64{"minBudget": &filter.MinBudget, "maxBudget": &filter.MaxBudget} {
			if v := c.Query(key); v != "" {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be a number"})
					return
				}
				*dst = f
			}
		}

		ctx := c.Request.Context()
		useCache := true                                              // Off when the generation is unknown
		gen, err := utils.CacheGeneration(ctx, rdb, activeJobsGenKey) // Read before the store
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("Failed to read job listing generation")
			useCache = false
		}
		cacheKey := listingsKey(gen, filter) // Cache key built from the generation and the filter
		var cached jobsResponse
		if useCache {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				writeJobs(c, cached, true) // Serve from cache
				return
			}
		}

		views, err := jobs.ListActiveJobs(ctx, filter)
		if err != nil {
			respondError(c, err, "List active jobs", logrus.Fields{"filter": cacheKey})
			return
		}
		resp := jobsResponse{Jobs: views}
		if len(views) == 0 {
			resp.Message = "No active jobs found"
		}
		if useCache {
			if err := utils.SetCache(ctx, rdb, cacheKey, resp, ttl); err != nil {
				logrus.WithField("error", err.Error()).Warn("Failed to cache job listings")
			}
		}
		writeJobs(c, resp, false)
	}
}

func writeJobs(c *gin.Context, resp jobsResponse, cached bool) {
	body := gin.H{"jobs": resp.Jobs}
	if resp.Jobs == nil {
		body["jobs"] = []service.JobView{}
	}
	if resp.Message != "" {
		body["message"] = resp.Message
	}
	if cached {
		body["cached"] = true // Indicate response is from cache
	}
	c.JSON(http.StatusOK, body)
}

// ListOwnedJobsHandler returns the caller's active jobs
func ListOwnedJobsHandler(jobs *service.JobService) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := jobs.ListOwnedActiveJobs(c.Request.Context(), actorID(c))
		if err != nil {
			respondError(c, err, "List owned jobs", logrus.Fields{"user_id": actorID(c)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"jobs": views})
	}
}

// ListOngoingJobsHandler returns accepted jobs where the caller is client or freelancer
func ListOngoingJobsHandler(jobs *service.JobService) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := jobs.ListOngoingJobs(c.Request.Context(), actorID(c))
		if err != nil {
			respondError(c, err, "List ongoing jobs", logrus.Fields{"user_id": actorID(c)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": views})
	}
}

// CreateJobHandler posts a new job for the caller
func CreateJobHandler(jobs *service.JobService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateJobRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: title, description, jobType, budget and img are required"})
			return
		}
		job, err := jobs.CreateJobAs(c.Request.Context(), actor(c), service.CreateJobInput{
			Title:       req.Title,
			Description: req.Description,
			JobType:     req.JobType,
			Budget:      req.Budget,
			Img:         req.Img,
		})
		if err != nil {
			respondError(c, err, "Create job", logrus.Fields{"user_id": actorID(c)})
			return
		}
		invalidateListings(rdb)
		logrus.WithFields(logrus.Fields{
			"user_id": actorID(c), // Posting client
			"job_id":  job.ID,     // New job
			"budget":  job.Budget, // Offered budget
		}).Info("Job created")
		c.JSON(http.StatusCreated, gin.H{"job": job})
	}
}

// CompleteJobHandler marks one of the caller's jobs complete
func CompleteJobHandler(jobs *service.JobService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, ok := uuidParam(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFoundOrForbidden.Error()})
			return
		}
		job, err := jobs.CompleteJob(c.Request.Context(), actorID(c), jobID)
		if err != nil {
			respondError(c, err, "Complete job", logrus.Fields{"user_id": actorID(c), "job_id": jobID})
			return
		}
		invalidateListings(rdb)
		logrus.WithFields(logrus.Fields{"user_id": actorID(c), "job_id": jobID}).Info("Job completed")
		c.JSON(http.StatusOK, gin.H{"job": job})
	}
}

// DeleteJobHandler removes one of the caller's jobs
func DeleteJobHandler(jobs *service.JobService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, ok := uuidParam(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFoundOrForbidden.Error()})
			return
		}
		if err := jobs.DeleteJob(c.Request.Context(), actorID(c), jobID); err != nil {
			respondError(c, err, "Delete job", logrus.Fields{"user_id": actorID(c), "job_id": jobID})
			return
		}
		invalidateListings(rdb)
		logrus.WithFields(logrus.Fields{"user_id": actorID(c), "job_id": jobID}).Info("Job deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
	}
}

// PlaceBidHandler records the caller's bid on a job
func PlaceBidHandler(jobs *service.JobService) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, ok := uuidParam(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job does not exist"})
			return
		}
		var req BidRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bid amount"})
			return
		}
		job, err := jobs.PlaceBidAs(c.Request.Context(), actor(c), jobID, req.Amount)
		if err != nil {
			respondError(c, err, "Place bid", logrus.Fields{"user_id": actorID(c), "job_id": jobID})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": actorID(c), // Bidding freelancer
			"job_id":  jobID,      // Target job
			"amount":  req.Amount, // Bid amount
		}).Info("Bid placed")
		c.JSON(http.StatusCreated, gin.H{"job": job})
	}
}

// ListBidsHandler returns the bids on one of the caller's jobs
func ListBidsHandler(jobs *service.JobService) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, ok := uuidParam(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job does not exist"})
			return
		}
		bids, err := jobs.ListBids(c.Request.Context(), actorID(c), jobID)
		if err != nil {
			respondError(c, err, "List bids", logrus.Fields{"user_id": actorID(c), "job_id": jobID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bids": bids})
	}
}

// AcceptFreelancerHandler hires a bidder for one of the caller's jobs
func AcceptFreelancerHandler(jobs *service.JobService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, ok := uuidParam(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job does not exist"})
			return
		}
		freelancerID, ok := uuidParam(c, "freelancerId")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No bid from this freelancer on the job"})
			return
		}
		job, err := jobs.AcceptFreelancer(c.Request.Context(), actorID(c), jobID, freelancerID)
		if err != nil {
			respondError(c, err, "Accept freelancer", logrus.Fields{
				"user_id":       actorID(c),
				"job_id":        jobID,
				"freelancer_id": freelancerID,
			})
			return
		}
		invalidateListings(rdb)
		logrus.WithFields(logrus.Fields{
			"user_id":       actorID(c),   // Owning client
			"job_id":        jobID,        // Accepted job
			"freelancer_id": freelancerID, // Hired freelancer
		}).Info("Freelancer accepted")
		c.JSON(http.StatusOK, gin.H{"job": job})
	}
}
