package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/db"
)

// AliasRepository handles database operations for published aliases.
// A nil groupID targets the shared alias table; a non-nil groupID targets
// the per-group table. Moderation rows live in ModerationRepository.
type AliasRepository struct {
	db *db.DB
}

// NewAliasRepository creates a new alias repository
func NewAliasRepository(db *db.DB) *AliasRepository {
	return &AliasRepository{db: db}
}

func aliasTable(groupID *string) string {
	if groupID != nil {
		return "group_aliases"
	}
	return "aliases"
}

func groupFilter(b sq.SelectBuilder, groupID *string) sq.SelectBuilder {
	if groupID != nil {
		return b.Where(sq.Eq{"group_id": *groupID})
	}
	return b
}

// LookupIDs returns the target ids an alias text maps to. Matching is
// exact and case-sensitive; no rows is not an error.
func (r *AliasRepository) LookupIDs(ctx context.Context, aliasType, alias string, groupID *string) ([]int, error) {
	builder := groupFilter(
		psql.Select("alias_type_id").
			From(aliasTable(groupID)).
			Where(sq.Eq{"alias_type": aliasType, "alias": alias}),
		groupID,
	).OrderBy("id")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build alias id lookup: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup alias ids: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan alias id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alias ids: %w", err)
	}

	return ids, nil
}

// LookupAliases returns all alias texts of a target, in insertion order
func (r *AliasRepository) LookupAliases(ctx context.Context, aliasType string, aliasTypeID int, groupID *string) ([]string, error) {
	builder := groupFilter(
		psql.Select("alias").
			From(aliasTable(groupID)).
			Where(sq.Eq{"alias_type": aliasType, "alias_type_id": aliasTypeID}),
		groupID,
	).OrderBy("id")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build alias lookup: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup aliases: %w", err)
	}
	defer rows.Close()

	aliases := []string{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		aliases = append(aliases, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aliases: %w", err)
	}

	return aliases, nil
}

// Publish inserts an alias unconditionally. Duplicates are allowed; the
// tables carry no uniqueness constraint on alias text.
func (r *AliasRepository) Publish(ctx context.Context, aliasType string, aliasTypeID int, alias string) (*models.Alias, error) {
	query := `
		INSERT INTO aliases (alias_type, alias_type_id, alias)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	result := &models.Alias{
		AliasType:   aliasType,
		AliasTypeID: aliasTypeID,
		Alias:       alias,
	}
	if err := r.db.QueryRow(ctx, query, aliasType, aliasTypeID, alias).Scan(&result.ID); err != nil {
		return nil, fmt.Errorf("publish alias: %w", err)
	}

	return result, nil
}

// PublishGroup inserts a per-group alias
func (r *AliasRepository) PublishGroup(ctx context.Context, groupID, aliasType string, aliasTypeID int, alias string) (*models.Alias, error) {
	query := `
		INSERT INTO group_aliases (group_id, alias_type, alias_type_id, alias)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	result := &models.Alias{
		AliasType:   aliasType,
		AliasTypeID: aliasTypeID,
		Alias:       alias,
	}
	if err := r.db.QueryRow(ctx, query, groupID, aliasType, aliasTypeID, alias).Scan(&result.ID); err != nil {
		return nil, fmt.Errorf("publish group alias: %w", err)
	}

	return result, nil
}

// Retract deletes matching aliases and returns the number of rows removed.
// An optional internalID narrows the match to one specific row. Zero rows
// removed is reported, not treated as an error.
func (r *AliasRepository) Retract(ctx context.Context, aliasType string, aliasTypeID int, alias string, internalID *int64) (int64, error) {
	builder := psql.Delete("aliases").
		Where(sq.Eq{"alias_type": aliasType, "alias_type_id": aliasTypeID, "alias": alias})
	if internalID != nil {
		builder = builder.Where(sq.Eq{"id": *internalID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build alias delete: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retract alias: %w", err)
	}

	return tag.RowsAffected(), nil
}

// RetractGroup deletes matching per-group aliases and returns the number
// of rows removed
func (r *AliasRepository) RetractGroup(ctx context.Context, groupID, aliasType string, aliasTypeID int, alias string) (int64, error) {
	query := `
		DELETE FROM group_aliases
		WHERE group_id = $1 AND alias_type = $2 AND alias_type_id = $3 AND alias = $4
	`

	tag, err := r.db.Exec(ctx, query, groupID, aliasType, aliasTypeID, alias)
	if err != nil {
		return 0, fmt.Errorf("retract group alias: %w", err)
	}

	return tag.RowsAffected(), nil
}
