// Package seed fills a development database with students, imported clubs
// and demo posts.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"clubhub/internal/database"
	"clubhub/internal/middleware"
	"clubhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// StudentDomain is appended to generated student addresses.
	StudentDomain = "ucmerced.edu"
	// DefaultPassword is the password of every seeded account.
	DefaultPassword = "password123"
)

// Options control a seeding run.
type Options struct {
	ClubsCSV   string
	Students   int
	AdminEmail string
	Reset      bool
	// SkipBcrypt stores DefaultPassword hashed at the minimum cost, for fast test runs.
	SkipBcrypt bool
	Seed       int64
}

// Summary counts what a run created.
type Summary struct {
	Students  int
	Clubs     int
	DemoPosts int
}

// Seeder runs the seeding steps against one database.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	now  func() time.Time
}

// NewSeeder returns a Seeder. A zero Options.Seed picks a time-based seed.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.Students <= 0 {
		opts.Students = 10
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@" + StudentDomain
	}
	gofakeit.Seed(seed)
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(seed)),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Run executes every step in order.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	log := middleware.Logger
	sum := &Summary{}

	if s.opts.Reset {
		if err := s.Reset(ctx); err != nil {
			return nil, err
		}
		log.InfoContext(ctx, "database reset")
	}

	students, err := s.Students(ctx, s.opts.Students)
	if err != nil {
		return nil, err
	}
	sum.Students = len(students)
	if err := s.Admin(ctx); err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "accounts seeded", slog.Int("students", len(students)), slog.String("admin", s.opts.AdminEmail))

	if s.opts.ClubsCSV != "" {
		f, err := os.Open(s.opts.ClubsCSV)
		switch {
		case os.IsNotExist(err):
			log.WarnContext(ctx, "club csv not found, skipping import", slog.String("path", s.opts.ClubsCSV))
		case err != nil:
			return nil, fmt.Errorf("open club csv: %w", err)
		default:
			sum.Clubs, err = ImportClubs(ctx, s.db, f)
			_ = f.Close()
			if err != nil {
				return nil, err
			}
			log.InfoContext(ctx, "clubs imported", slog.Int("count", sum.Clubs))
		}
	}

	demos, err := DemoPosts()
	if err != nil {
		return nil, err
	}
	sum.DemoPosts, err = SeedDemoPosts(ctx, s.db, demos, students, s.now(), s.rng)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "demo posts seeded", slog.Int("count", sum.DemoPosts))
	return sum, nil
}

// Reset drops and recreates every table.
func (s *Seeder) Reset(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	m := database.PersistentModels()
	for i := len(m) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(m[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return database.ApplySchema(db)
}

// Students creates n student accounts with generated addresses.
func (s *Seeder) Students(ctx context.Context, n int) ([]models.User, error) {
	hash, err := s.passwordHash()
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, n)
	seen := make(map[string]struct{}, n)
	for len(users) < n {
		local := strings.ToLower(gofakeit.Username()) + fmt.Sprint(gofakeit.Number(10, 99))
		email := local + "@" + StudentDomain
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		users = append(users, models.User{Email: email, Password: hash, Role: models.RoleStudent})
	}
	if err := s.db.WithContext(ctx).Create(&users).Error; err != nil {
		return nil, fmt.Errorf("create students: %w", err)
	}
	return users, nil
}

// Admin ensures the admin account exists with the admin role.
func (s *Seeder) Admin(ctx context.Context) error {
	hash, err := s.passwordHash()
	if err != nil {
		return err
	}
	admin := models.User{Email: s.opts.AdminEmail, Password: hash, Role: models.RoleAdmin}
	err = s.db.WithContext(ctx).
		Where(models.User{Email: admin.Email}).
		Assign(models.User{Role: models.RoleAdmin}).
		FirstOrCreate(&admin).Error
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	return nil
}

func (s *Seeder) passwordHash() (string, error) {
	cost := bcrypt.DefaultCost
	if s.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
