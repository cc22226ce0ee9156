package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		page_id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT UNIQUE NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'listed',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS links (
		link_id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_page_id INTEGER NOT NULL,
		to_page_id INTEGER NOT NULL,
		weight INTEGER DEFAULT 1,
		FOREIGN KEY (from_page_id) REFERENCES pages(page_id),
		FOREIGN KEY (to_page_id) REFERENCES pages(page_id),
		UNIQUE(from_page_id, to_page_id)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_path ON pages(path);
	CREATE INDEX IF NOT EXISTS idx_links_from ON links(from_page_id);
	CREATE INDEX IF NOT EXISTS idx_links_to ON links(to_page_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset removes the results of a previous audit
func (s *Storage) Reset() error {
	if _, err := s.db.Exec("DELETE FROM links; DELETE FROM pages;"); err != nil {
		return fmt.Errorf("failed to reset audit tables: %w", err)
	}
	return nil
}

// UpsertPage inserts a new page or updates description and status if the path exists.
// Returns the page_id of the inserted/existing page
func (s *Storage) UpsertPage(path, description, status string) (int, error) {
	_, err := s.db.Exec(`
		INSERT INTO pages (path, description, status)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			description = COALESCE(NULLIF(EXCLUDED.description, ''), pages.description),
			status = EXCLUDED.status
	`, path, description, status)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert page: %w", err)
	}

	var pageID int
	err = s.db.QueryRow("SELECT page_id FROM pages WHERE path = ?", path).Scan(&pageID)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve page_id: %w", err)
	}

	return pageID, nil
}

// GetPage retrieves a page by path, returns nil if not found
func (s *Storage) GetPage(path string) (*Page, error) {
	var page Page
	var description sql.NullString
	err := s.db.QueryRow(`
		SELECT page_id, path, description, status, created_at
		FROM pages
		WHERE path = ?
	`, path).Scan(&page.PageID, &page.Path, &description, &page.Status, &page.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	page.Description = description.String
	return &page, nil
}

// UpsertLink inserts a new link or adds weight if it exists
func (s *Storage) UpsertLink(fromID, toID, weight int) error {
	_, err := s.db.Exec(`
		INSERT INTO links (from_page_id, to_page_id, weight)
		VALUES (?, ?, ?)
		ON CONFLICT(from_page_id, to_page_id) DO UPDATE SET
			weight = weight + EXCLUDED.weight
	`, fromID, toID, weight)
	if err != nil {
		return fmt.Errorf("failed to upsert link: %w", err)
	}
	return nil
}

// InboundCounts returns the number of distinct source pages linking to each page path
func (s *Storage) InboundCounts() (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT p.path, COUNT(l.link_id)
		FROM pages p
		LEFT JOIN links l ON l.to_page_id = p.page_id AND l.from_page_id != p.page_id
		GROUP BY p.page_id
		ORDER BY p.path ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count inbound links: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var path string
		var count int
		if err := rows.Scan(&path, &count); err != nil {
			return nil, fmt.Errorf("failed to scan inbound count: %w", err)
		}
		counts[path] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inbound counts: %w", err)
	}

	return counts, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
