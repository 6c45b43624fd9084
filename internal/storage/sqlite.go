package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/kalambet/folio/internal/profile"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding the portfolio profile and skills.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "folio.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Profile ---

// GetProfile returns the stored profile. An empty store yields a zero
// profile rather than ErrNotFound: the service always has exactly one.
func (s *Store) GetProfile() (profile.Profile, error) {
	var p profile.Profile
	var skillIDs string
	err := s.db.QueryRow(`
		SELECT name, title, bio, email, phone, location, profile_image, github, linkedin, twitter, skill_ids
		FROM profile WHERE id = 1`,
	).Scan(&p.Name, &p.Title, &p.Bio, &p.Email, &p.Phone, &p.Location, &p.ProfileImage,
		&p.SocialLinks.GitHub, &p.SocialLinks.LinkedIn, &p.SocialLinks.Twitter, &skillIDs)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.Profile{Skills: []profile.SkillID{}}, nil
	}
	if err != nil {
		return profile.Profile{}, err
	}
	if err := json.Unmarshal([]byte(skillIDs), &p.Skills); err != nil {
		return profile.Profile{}, fmt.Errorf("parsing skill_ids: %w", err)
	}
	if p.Skills == nil {
		p.Skills = []profile.SkillID{}
	}
	return p, nil
}

// PutProfile replaces the stored profile.
func (s *Store) PutProfile(p profile.Profile) error {
	ids := p.Skills
	if ids == nil {
		ids = []profile.SkillID{}
	}
	skillIDs, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshalling skill ids: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO profile (id, name, title, bio, email, phone, location, profile_image, github, linkedin, twitter, skill_ids, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, title = excluded.title, bio = excluded.bio,
			email = excluded.email, phone = excluded.phone, location = excluded.location,
			profile_image = excluded.profile_image, github = excluded.github,
			linkedin = excluded.linkedin, twitter = excluded.twitter,
			skill_ids = excluded.skill_ids, updated_at = excluded.updated_at`,
		p.Name, p.Title, p.Bio, p.Email, p.Phone, p.Location, p.ProfileImage,
		p.SocialLinks.GitHub, p.SocialLinks.LinkedIn, p.SocialLinks.Twitter,
		string(skillIDs), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// --- Skills ---

// AddSkill inserts a skill and returns it with its assigned numeric ID.
func (s *Store) AddSkill(sk profile.Skill) (profile.Skill, error) {
	res, err := s.db.Exec(`
		INSERT INTO skills (name, category, proficiency, years_of_experience, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sk.Name, sk.Category, sk.Proficiency, sk.YearsOfExperience,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return profile.Skill{}, fmt.Errorf("skill %q in %q: %w", sk.Name, sk.Category, ErrDuplicate)
		}
		return profile.Skill{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return profile.Skill{}, err
	}
	sk.ID = profile.SkillID(strconv.FormatInt(id, 10))
	return sk, nil
}

// ListSkills returns every skill in insertion order.
func (s *Store) ListSkills() ([]profile.Skill, error) {
	rows, err := s.db.Query(`
		SELECT id, name, category, proficiency, years_of_experience
		FROM skills ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []profile.Skill
	for rows.Next() {
		var sk profile.Skill
		var id int64
		if err := rows.Scan(&id, &sk.Name, &sk.Category, &sk.Proficiency, &sk.YearsOfExperience); err != nil {
			return nil, err
		}
		sk.ID = profile.SkillID(strconv.FormatInt(id, 10))
		results = append(results, sk)
	}
	return results, rows.Err()
}

// DeleteSkill removes a skill by ID.
func (s *Store) DeleteSkill(id int64) error {
	res, err := s.db.Exec(`DELETE FROM skills WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
