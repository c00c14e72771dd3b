package database

const findOrCreateGrantSQL = `
WITH ins AS (
    INSERT INTO grants (code, name, created_by, updated_by)
    VALUES ($1, $2, $3, $3)
    ON CONFLICT (code) DO NOTHING
    RETURNING id, code, name, created_by, updated_by, created_at, true AS created
)
SELECT id, code, name, created_by, updated_by, created_at, created FROM ins
UNION ALL
SELECT id, code, name, created_by, updated_by, created_at, false FROM grants WHERE code = $1
LIMIT 1`

const selectGrantByCodeSQL = `
SELECT id, code, name, created_by, updated_by, created_at, false
FROM grants WHERE code = $1`

const itemExistsSQL = `
SELECT EXISTS (SELECT 1 FROM grant_items WHERE grant_id = $1 AND bg_line = $2)`

const insertImportSQL = `
INSERT INTO grant_imports (id, file_name, actor, processed_grants, inserted_items, warning_count)
VALUES ($1, $2, $3, $4, $5, $6)`

// Only grants with at least one item are listed.
const listGrantsSQL = `
SELECT g.id, g.code, g.name, g.created_by, g.updated_by, g.created_at
FROM grants g
WHERE ($1::bigint = 0 OR g.id = $1)
  AND EXISTS (SELECT 1 FROM grant_items i WHERE i.grant_id = g.id)
ORDER BY g.id`

const listItemsSQL = `
SELECT id, grant_id, bg_line, grant_position, grant_salary, grant_benefit,
       grant_level_of_effort, grant_position_number, grant_cost_by_monthly,
       grant_total_amount, grant_total_cost_by_person, position_id,
       created_by, updated_by
FROM grant_items
WHERE grant_id = ANY($1)
ORDER BY grant_id, bg_line`

var grantItemColumns = []string{
	"grant_id", "bg_line", "grant_position", "grant_salary", "grant_benefit",
	"grant_level_of_effort", "grant_position_number", "grant_cost_by_monthly",
	"grant_total_amount", "grant_total_cost_by_person", "position_id",
	"created_by", "updated_by",
}
