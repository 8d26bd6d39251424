package repository

import (
	"database/sql"
	"time"

	"mathmotion/internal/models"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ProjectParams carries the intake form fields for a new project.
type ProjectParams struct {
	UserID              int64
	Title               string
	Description         string
	AnimationType       string
	DurationSeconds     *int
	StylePreferences    string
	ScriptContent       string
	BudgetMin           *int
	BudgetMax           *int
	Deadline            *time.Time
	Currency            string
	EstimatedPriceMinor *int64
}

const projectColumns = `id, user_id, title, description, animation_type,
	duration_seconds, style_preferences, script_content,
	budget_min, budget_max, deadline, status, currency,
	estimated_price_minor, final_price_minor, deliverable_path,
	notes, assigned_to, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	p := &models.Project{}
	var duration, budgetMin, budgetMax sql.NullInt32
	var deadline sql.NullTime
	var estimated, final, assignedTo sql.NullInt64
	var deliverable sql.NullString

	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.AnimationType,
		&duration, &p.StylePreferences, &p.ScriptContent,
		&budgetMin, &budgetMax, &deadline, &p.Status, &p.Currency,
		&estimated, &final, &deliverable,
		&p.Notes, &assignedTo, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if duration.Valid {
		d := int(duration.Int32)
		p.DurationSeconds = &d
	}
	if budgetMin.Valid {
		b := int(budgetMin.Int32)
		p.BudgetMin = &b
	}
	if budgetMax.Valid {
		b := int(budgetMax.Int32)
		p.BudgetMax = &b
	}
	if deadline.Valid {
		p.Deadline = &deadline.Time
	}
	if estimated.Valid {
		p.EstimatedPriceMinor = &estimated.Int64
	}
	if final.Valid {
		p.FinalPriceMinor = &final.Int64
	}
	if deliverable.Valid {
		p.DeliverablePath = &deliverable.String
	}
	if assignedTo.Valid {
		p.AssignedTo = &assignedTo.Int64
	}
	return p, nil
}

func (r *ProjectRepository) Create(params ProjectParams) (*models.Project, error) {
	row := r.db.QueryRow(`
		INSERT INTO projects (user_id, title, description, animation_type, duration_seconds,
			style_preferences, script_content, budget_min, budget_max, deadline,
			currency, estimated_price_minor, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'submitted')
		RETURNING `+projectColumns,
		params.UserID, params.Title, params.Description, params.AnimationType, params.DurationSeconds,
		params.StylePreferences, params.ScriptContent, params.BudgetMin, params.BudgetMax, params.Deadline,
		params.Currency, params.EstimatedPriceMinor,
	)
	return scanProject(row)
}

func (r *ProjectRepository) GetByID(id int64) (*models.Project, error) {
	row := r.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		return nil, err
	}

	files, err := r.ListFiles(id)
	if err == nil {
		p.Files = files
	}
	return p, nil
}

// ListByUser returns the user's projects, pinned projects first, newest
// first within each group. statusFilter narrows by status when non-empty.
func (r *ProjectRepository) ListByUser(userID int64, statusFilter string) ([]models.Project, error) {
	query := `
		SELECT ` + qualifiedProjectColumns() + `,
		       (pp.project_id IS NOT NULL)
		FROM projects p
		LEFT JOIN project_pins pp ON pp.project_id = p.id AND pp.user_id = p.user_id
		WHERE p.user_id = $1`

	args := []any{userID}
	if statusFilter != "" {
		query += ` AND p.status = $2`
		args = append(args, statusFilter)
	}
	query += ` ORDER BY (pp.project_id IS NOT NULL) DESC, p.created_at DESC`

	return r.queryProjectsPinned(query, args...)
}

// ListAll returns every project for the admin console, newest first.
func (r *ProjectRepository) ListAll(statusFilter string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []any{}
	if statusFilter != "" {
		query += ` WHERE status = $1`
		args = append(args, statusFilter)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) queryProjectsPinned(query string, args ...any) ([]models.Project, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p := &models.Project{}
		var duration, budgetMin, budgetMax sql.NullInt32
		var deadline sql.NullTime
		var estimated, final, assignedTo sql.NullInt64
		var deliverable sql.NullString

		err := rows.Scan(
			&p.ID, &p.UserID, &p.Title, &p.Description, &p.AnimationType,
			&duration, &p.StylePreferences, &p.ScriptContent,
			&budgetMin, &budgetMax, &deadline, &p.Status, &p.Currency,
			&estimated, &final, &deliverable,
			&p.Notes, &assignedTo, &p.CreatedAt, &p.UpdatedAt,
			&p.Pinned,
		)
		if err != nil {
			return nil, err
		}

		if duration.Valid {
			d := int(duration.Int32)
			p.DurationSeconds = &d
		}
		if budgetMin.Valid {
			b := int(budgetMin.Int32)
			p.BudgetMin = &b
		}
		if budgetMax.Valid {
			b := int(budgetMax.Int32)
			p.BudgetMax = &b
		}
		if deadline.Valid {
			p.Deadline = &deadline.Time
		}
		if estimated.Valid {
			p.EstimatedPriceMinor = &estimated.Int64
		}
		if final.Valid {
			p.FinalPriceMinor = &final.Int64
		}
		if deliverable.Valid {
			p.DeliverablePath = &deliverable.String
		}
		if assignedTo.Valid {
			p.AssignedTo = &assignedTo.Int64
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func qualifiedProjectColumns() string {
	return `p.id, p.user_id, p.title, p.description, p.animation_type,
	p.duration_seconds, p.style_preferences, p.script_content,
	p.budget_min, p.budget_max, p.deadline, p.status, p.currency,
	p.estimated_price_minor, p.final_price_minor, p.deliverable_path,
	p.notes, p.assigned_to, p.created_at, p.updated_at`
}

func (r *ProjectRepository) UpdateStatus(id int64, status string) (*models.Project, error) {
	row := r.db.QueryRow(
		`UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+projectColumns,
		status, id,
	)
	return scanProject(row)
}

// SetFinalPrice stores the final price in minor units; once set it is
// authoritative over the estimate for display.
func (r *ProjectRepository) SetFinalPrice(id int64, priceMinor int64) (*models.Project, error) {
	row := r.db.QueryRow(
		`UPDATE projects SET final_price_minor = $1, updated_at = NOW() WHERE id = $2 RETURNING `+projectColumns,
		priceMinor, id,
	)
	return scanProject(row)
}

func (r *ProjectRepository) UpdateNotes(id int64, notes string) error {
	_, err := r.db.Exec(`UPDATE projects SET notes = $1, updated_at = NOW() WHERE id = $2`, notes, id)
	return err
}

func (r *ProjectRepository) Assign(id int64, adminID *int64) error {
	_, err := r.db.Exec(`UPDATE projects SET assigned_to = $1, updated_at = NOW() WHERE id = $2`, adminID, id)
	return err
}

// SetDeliverable re-points (or clears) the current deliverable.
func (r *ProjectRepository) SetDeliverable(id int64, path *string) error {
	_, err := r.db.Exec(`UPDATE projects SET deliverable_path = $1, updated_at = NOW() WHERE id = $2`, path, id)
	return err
}

// --- Deliverable files ---

func (r *ProjectRepository) AddFile(projectID int64, filePath, fileName string, fileSize int64) (*models.ProjectFile, error) {
	f := &models.ProjectFile{}
	err := r.db.QueryRow(
		`INSERT INTO project_files (project_id, file_path, file_name, file_size)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, project_id, file_path, file_name, file_size, created_at`,
		projectID, filePath, fileName, fileSize,
	).Scan(&f.ID, &f.ProjectID, &f.FilePath, &f.FileName, &f.FileSize, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *ProjectRepository) ListFiles(projectID int64) ([]models.ProjectFile, error) {
	rows, err := r.db.Query(
		`SELECT id, project_id, file_path, file_name, file_size, created_at
		 FROM project_files WHERE project_id = $1 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.ProjectFile
	for rows.Next() {
		var f models.ProjectFile
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.FilePath, &f.FileName, &f.FileSize, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *ProjectRepository) GetFile(id int64) (*models.ProjectFile, error) {
	f := &models.ProjectFile{}
	err := r.db.QueryRow(
		`SELECT id, project_id, file_path, file_name, file_size, created_at
		 FROM project_files WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.ProjectID, &f.FilePath, &f.FileName, &f.FileSize, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *ProjectRepository) DeleteFile(id int64) error {
	_, err := r.db.Exec(`DELETE FROM project_files WHERE id = $1`, id)
	return err
}

// AllFilePaths lists every stored file path, for the storage janitor.
func (r *ProjectRepository) AllFilePaths() ([]string, error) {
	rows, err := r.db.Query(`SELECT file_path FROM project_files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// --- Pins ---

func (r *ProjectRepository) Pin(userID, projectID int64) error {
	_, err := r.db.Exec(
		`INSERT INTO project_pins (user_id, project_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, projectID,
	)
	return err
}

func (r *ProjectRepository) Unpin(userID, projectID int64) error {
	_, err := r.db.Exec(
		`DELETE FROM project_pins WHERE user_id = $1 AND project_id = $2`,
		userID, projectID,
	)
	return err
}
