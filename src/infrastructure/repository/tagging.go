package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"crm-app/src/database"
	"crm-app/src/domain"
)

// assocKind 関連種別の定義。リンクテーブルとラベル式でパラメータ化し、
// ノートとタスクで同じリコンサイルエンジンを共有する
type assocKind struct {
	kind        string // エラーメッセージ用の種別名
	entityTable string
	labelExpr   string // 人間が読めるラベルを返すSQL式
	linkTable   string
	ownerCol    string
	relatedCol  string
}

var (
	noteContactAssoc = assocKind{
		kind:        "Contact",
		entityTable: "contacts",
		labelExpr:   "first_name || ' ' || last_name",
		linkTable:   "note_contact_association",
		ownerCol:    "note_id",
		relatedCol:  "contact_id",
	}
	noteOrganizationAssoc = assocKind{
		kind:        "Organization",
		entityTable: "organizations",
		labelExpr:   "name",
		linkTable:   "note_organization_association",
		ownerCol:    "note_id",
		relatedCol:  "organization_id",
	}
	noteTaskAssoc = assocKind{
		kind:        "Task",
		entityTable: "tasks",
		labelExpr:   "title",
		linkTable:   "note_task_association",
		ownerCol:    "note_id",
		relatedCol:  "task_id",
	}
	taskContactAssoc = assocKind{
		kind:        "Contact",
		entityTable: "contacts",
		labelExpr:   "first_name || ' ' || last_name",
		linkTable:   "task_contact_association",
		ownerCol:    "task_id",
		relatedCol:  "contact_id",
	}
	taskOrganizationAssoc = assocKind{
		kind:        "Organization",
		entityTable: "organizations",
		labelExpr:   "name",
		linkTable:   "task_organization_association",
		ownerCol:    "task_id",
		relatedCol:  "organization_id",
	}
)

// kindInstruction 一つの関連種別に対する追加・削除指示
type kindInstruction struct {
	assoc     assocKind
	addIDs    []int
	removeIDs []int
}

// kindChange リコンサイル結果の種別ごとの差分
type kindChange struct {
	added   []string
	removed []string
}

// executor DBとトランザクションの両方で使えるクエリ実行契約
type executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// inClause `IN (?, ?, ...)` 用のプレースホルダーと引数を組み立てる
func inClause(ids []int) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}

// resolveLabels 指定IDのラベルを引く。見つからなかったIDも返す
func resolveLabels(ctx context.Context, ex executor, assoc assocKind, ids []int) (map[int]string, []int, error) {
	if len(ids) == 0 {
		return map[int]string{}, nil, nil
	}

	in, args := inClause(ids)
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE id IN (%s)", assoc.labelExpr, assoc.entityTable, in)

	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve %s references: %w", strings.ToLower(assoc.kind), err)
	}
	defer rows.Close()

	labels := make(map[int]string)
	for rows.Next() {
		var (
			id    int
			label string
		)
		if err := rows.Scan(&id, &label); err != nil {
			return nil, nil, fmt.Errorf("failed to scan %s reference: %w", strings.ToLower(assoc.kind), err)
		}
		labels[id] = label
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows error: %w", err)
	}

	var missing []int
	seen := make(map[int]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := labels[id]; !ok {
			missing = append(missing, id)
		}
	}

	return labels, missing, nil
}

// currentSet オーナーの現在の関連ID集合
func currentSet(ctx context.Context, ex executor, assoc assocKind, ownerID int) (map[int]bool, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", assoc.relatedCol, assoc.linkTable, assoc.ownerCol)

	rows, err := ex.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load association set: %w", err)
	}
	defer rows.Close()

	set := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan association: %w", err)
		}
		set[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return set, nil
}

// reconcileKinds リコンサイルエンジンの本体。一つのトランザクション内で、
// 全種別の追加対象IDを先に解決してから初めて書き込みを行う。
// 未解決IDが一つでもあれば、どの種別にも一切変更を加えずにエラーを返す。
// 差分には実際に追加・削除されたエントリだけが入る
func reconcileKinds(ctx context.Context, tx *database.Tx, ownerID int, instrs []kindInstruction) ([]kindChange, error) {
	// 検証フェーズ：全種別の追加IDを解決する
	addLabels := make([]map[int]string, len(instrs))
	for i, instr := range instrs {
		labels, missing, err := resolveLabels(ctx, tx, instr.assoc, instr.addIDs)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			return nil, &domain.ReferenceNotFoundError{Kind: instr.assoc.kind, MissingIDs: missing}
		}
		addLabels[i] = labels
	}

	// 適用フェーズ：既存ペアはスキップ、不在ペアの削除は無視
	changes := make([]kindChange, len(instrs))
	for i, instr := range instrs {
		if len(instr.addIDs) == 0 && len(instr.removeIDs) == 0 {
			continue
		}

		existing, err := currentSet(ctx, tx, instr.assoc, ownerID)
		if err != nil {
			return nil, err
		}

		var toAdd []int
		seen := make(map[int]bool)
		for _, id := range instr.addIDs {
			if seen[id] || existing[id] {
				seen[id] = true
				continue
			}
			seen[id] = true
			toAdd = append(toAdd, id)
		}
		sort.Ints(toAdd)

		insertQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)",
			instr.assoc.linkTable, instr.assoc.ownerCol, instr.assoc.relatedCol)
		for _, id := range toAdd {
			if _, err := tx.ExecContext(ctx, insertQuery, ownerID, id); err != nil {
				return nil, fmt.Errorf("failed to add association: %w", err)
			}
			changes[i].added = append(changes[i].added, addLabels[i][id])
		}

		var toRemove []int
		seen = make(map[int]bool)
		for _, id := range instr.removeIDs {
			if seen[id] || !existing[id] {
				seen[id] = true
				continue
			}
			seen[id] = true
			toRemove = append(toRemove, id)
		}
		sort.Ints(toRemove)

		if len(toRemove) > 0 {
			removeLabels, _, err := resolveLabels(ctx, tx, instr.assoc, toRemove)
			if err != nil {
				return nil, err
			}

			deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?",
				instr.assoc.linkTable, instr.assoc.ownerCol, instr.assoc.relatedCol)
			for _, id := range toRemove {
				if _, err := tx.ExecContext(ctx, deleteQuery, ownerID, id); err != nil {
					return nil, fmt.Errorf("failed to remove association: %w", err)
				}
				changes[i].removed = append(changes[i].removed, removeLabels[id])
			}
		}
	}

	return changes, nil
}

// validateReferences 作成時のタグ付けで参照IDを事前検証する。
// 全種別を検証してから呼び出し側が書き込みを始める
func validateReferences(ctx context.Context, ex executor, pairs []kindInstruction) error {
	for _, instr := range pairs {
		_, missing, err := resolveLabels(ctx, ex, instr.assoc, instr.addIDs)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return &domain.ReferenceNotFoundError{Kind: instr.assoc.kind, MissingIDs: missing}
		}
	}
	return nil
}

// insertAssociations 検証済みのIDをリンクテーブルへ挿入する（重複は入力内でのみ除去）
func insertAssociations(ctx context.Context, ex executor, assoc assocKind, ownerID int, ids []int) error {
	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)",
		assoc.linkTable, assoc.ownerCol, assoc.relatedCol)

	seen := make(map[int]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := ex.ExecContext(ctx, query, ownerID, id); err != nil {
			return fmt.Errorf("failed to insert association: %w", err)
		}
	}
	return nil
}

// loadContacts オーナーに関連付いたコンタクト一覧
func loadContacts(ctx context.Context, ex executor, assoc assocKind, ownerID int) ([]domain.Contact, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.first_name, c.last_name
		FROM contacts c
		JOIN %s l ON l.%s = c.id
		WHERE l.%s = ?
		ORDER BY c.id`, assoc.linkTable, assoc.relatedCol, assoc.ownerCol)

	rows, err := ex.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// loadOrganizations オーナーに関連付いた組織一覧
func loadOrganizations(ctx context.Context, ex executor, assoc assocKind, ownerID int) ([]domain.Organization, error) {
	query := fmt.Sprintf(`
		SELECT o.id, o.name
		FROM organizations o
		JOIN %s l ON l.%s = o.id
		WHERE l.%s = ?
		ORDER BY o.id`, assoc.linkTable, assoc.relatedCol, assoc.ownerCol)

	rows, err := ex.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organizations: %w", err)
	}
	defer rows.Close()

	organizations := []domain.Organization{}
	for rows.Next() {
		var o domain.Organization
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		organizations = append(organizations, o)
	}
	return organizations, rows.Err()
}
