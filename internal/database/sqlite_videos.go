package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"videotube-api/internal/models"
)

// SQLiteVideoStore persists videos in the embedded database. Its listing
// mirrors the Mongo aggregation: the owner join is an inner join and the
// text match is case-insensitive for ASCII.
type SQLiteVideoStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteVideoStore(db *sql.DB) *SQLiteVideoStore {
	return &SQLiteVideoStore{db: db, now: utcNow}
}

func (s *SQLiteVideoStore) List(ctx context.Context, q VideoQuery) ([]models.VideoListItem, error) {
	var (
		where []string
		args  []any
	)
	if q.Search != "" {
		where = append(where, "(instr(lower(v.title), lower(?)) > 0 OR instr(lower(v.description), lower(?)) > 0)")
		args = append(args, q.Search, q.Search)
	}
	if q.OwnerID != nil {
		where = append(where, "v.owner = ?")
		args = append(args, q.OwnerID.Hex())
	}

	direction := "DESC"
	if q.Ascending {
		direction = "ASC"
	}

	query := `
		SELECT v.id, v.thumbnail, v.video_file, v.title, v.description, u.full_name, u.username, u.avatar
		FROM videos v
		JOIN users u ON u.id = v.owner`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf("\n\t\tORDER BY %s %s, v.id %s\n\t\tLIMIT ? OFFSET ?", sortColumns[q.sortField()], direction, direction)
	args = append(args, q.Limit, q.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	items := []models.VideoListItem{}
	for rows.Next() {
		var (
			item models.VideoListItem
			id   string
		)
		if err := rows.Scan(&id, &item.Thumbnail, &item.VideoFile, &item.Title, &item.Description,
			&item.CreatedBy.FullName, &item.CreatedBy.Username, &item.CreatedBy.Avatar); err != nil {
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		if item.ID, err = primitive.ObjectIDFromHex(id); err != nil {
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video rows: %w", err)
	}
	return items, nil
}

// Create inserts video and assigns its id and timestamps.
func (s *SQLiteVideoStore) Create(ctx context.Context, video *models.Video) error {
	now := s.now()
	video.ID = primitive.NewObjectID()
	video.CreatedAt = now
	video.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (id, video_file, thumbnail, title, description, duration, owner, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, video.ID.Hex(), video.VideoFile, video.Thumbnail, video.Title, video.Description,
		video.Duration, video.Owner.Hex(), video.IsPublished, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (s *SQLiteVideoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, video_file, thumbnail, title, description, duration, owner, is_published, created_at, updated_at
		FROM videos
		WHERE id = ?
	`, id.Hex())

	video, err := scanVideo(row)
	if err != nil {
		return nil, fmt.Errorf("find video %s: %w", id.Hex(), err)
	}
	return video, nil
}

// UpdateDetails sets title, description and thumbnail and returns the
// updated row.
func (s *SQLiteVideoStore) UpdateDetails(ctx context.Context, id primitive.ObjectID, title, description, thumbnail string) (*models.Video, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE videos
		SET title = ?, description = ?, thumbnail = ?, updated_at = ?
		WHERE id = ?
	`, title, description, thumbnail, formatTime(s.now()), id.Hex())
	if err != nil {
		return nil, fmt.Errorf("update video %s: %w", id.Hex(), err)
	}
	return s.reload(ctx, id, result)
}

// SetPublished stores the publish flag and returns the updated row.
func (s *SQLiteVideoStore) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE videos
		SET is_published = ?, updated_at = ?
		WHERE id = ?
	`, published, formatTime(s.now()), id.Hex())
	if err != nil {
		return nil, fmt.Errorf("update video %s: %w", id.Hex(), err)
	}
	return s.reload(ctx, id, result)
}

func (s *SQLiteVideoStore) reload(ctx context.Context, id primitive.ObjectID, result sql.Result) (*models.Video, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update video %s: %w", id.Hex(), err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *SQLiteVideoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id.Hex())
	if err != nil {
		return fmt.Errorf("delete video %s: %w", id.Hex(), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete video %s: %w", id.Hex(), err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVideo(row *sql.Row) (*models.Video, error) {
	var (
		video                models.Video
		id, owner            string
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &video.VideoFile, &video.Thumbnail, &video.Title, &video.Description,
		&video.Duration, &owner, &video.IsPublished, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if video.ID, err = primitive.ObjectIDFromHex(id); err != nil {
		return nil, err
	}
	if video.Owner, err = primitive.ObjectIDFromHex(owner); err != nil {
		return nil, err
	}
	if video.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if video.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &video, nil
}
