package db

import (
	"context"
	"fmt"

	"freelance_market/internal/domain"
	"freelance_market/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// SeedPassword is the password of every seeded account
const SeedPassword = "password123"

// SeedUsers are the sample accounts loaded by Seed
var SeedUsers = []domain.User{
	{FirstName: "John", LastName: "Doe", Email: "john@test.com", Bio: "I love to code in javaScript", AccessLevel: domain.RoleFreelancer},
	{FirstName: "Jane", LastName: "Doe", Email: "jane@test.com", Bio: "I don't like coding in javascript, but I love python!", AccessLevel: domain.RoleFreelancer},
	{FirstName: "Alice", LastName: "Smith", Email: "alice@test.com", Bio: "I love to code in Java!", AccessLevel: domain.RoleClient},
	{FirstName: "Bob", LastName: "Jones", Email: "bob@test.com", Bio: "C# is the superior programming language", AccessLevel: domain.RoleFreelancer},
	{FirstName: "Charlie", LastName: "Brown", Email: "charlie@test.com", Bio: "PHP is my favorite language!", AccessLevel: domain.RoleFreelancer},
	{FirstName: "David", LastName: "Lee", Email: "david@example.com", Bio: "C++ is the most versatile language and it's the best!", AccessLevel: domain.RoleClient},
	{FirstName: "Eve", LastName: "Black", Email: "eve@test.com", Bio: "real developers use TypeScript!", AccessLevel: domain.RoleFreelancer},
	{FirstName: "Frank", LastName: "White", Email: "frank@test.com", Bio: "I don't have a favorite, all programming languages have their use case!", AccessLevel: domain.RoleClient},
	{FirstName: "Grace", LastName: "Green", Email: "grace@test.com", Bio: "I don't know anything about programming", AccessLevel: domain.RoleFreelancer},
	{FirstName: "Hannah", LastName: "Blue", Email: "hannah@test.com", Bio: "I only develop in Assembly", AccessLevel: domain.RoleFreelancer},
}

// Seed wipes all jobs and users and loads SeedUsers
func Seed(ctx context.Context, jobs repository.JobRepository, users repository.UserRepository) error {
	if err := jobs.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear jobs: %w", err)
	}
	if err := users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	for _, u := range SeedUsers {
		u.ID = uuid.New()
		u.Password = string(hash)
		if err := users.Create(ctx, &u); err != nil {
			return fmt.Errorf("seed %s: %w", u.Email, err)
		}
	}
	logrus.WithField("count", len(SeedUsers)).Info("Users loaded into the database")
	return nil
}
