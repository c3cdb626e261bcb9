package repos

import (
	"fmt"

	"gorm.io/gorm"
)

// joinTable is one many-to-many relation. Each relation has its own table so
// roles, states and likes never share rows.
type joinTable struct {
	name  string
	left  string
	right string
}

var (
	tagUser         = joinTable{name: "tag_user", left: "tag_id", right: "user_id"}
	tagCommunity    = joinTable{name: "tag_community", left: "tag_id", right: "community_id"}
	tagPostLike     = joinTable{name: "tag_post_like", left: "tag_id", right: "post_id"}
	tagUserLike     = joinTable{name: "tag_user_like", left: "tag_id", right: "user_id"}
	communityMember = joinTable{name: "community_member", left: "community_id", right: "user_id"}
)

func (j joinTable) exists(db *gorm.DB, left, right uint) (bool, error) {
	var count int64
	err := db.Table(j.name).
		Where(fmt.Sprintf("%s = ? AND %s = ?", j.left, j.right), left, right).
		Count(&count).Error
	return count > 0, err
}

// link inserts the pair unless it is already present. A concurrent insert of
// the same pair counts as success.
func (j joinTable) link(db *gorm.DB, left, right uint) error {
	ok, err := j.exists(db, left, right)
	if err != nil || ok {
		return err
	}
	err = db.Table(j.name).Create(map[string]any{j.left: left, j.right: right}).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

func (j joinTable) unlink(db *gorm.DB, left, right uint) error {
	return db.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?", j.name, j.left, j.right), left, right).Error
}

func (j joinTable) unlinkLeft(db *gorm.DB, left uint) error {
	return db.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", j.name, j.left), left).Error
}

func (j joinTable) unlinkRight(db *gorm.DB, right uint) error {
	return db.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", j.name, j.right), right).Error
}

func (j joinTable) countLeft(db *gorm.DB, left uint) (int64, error) {
	var count int64
	err := db.Table(j.name).Where(fmt.Sprintf("%s = ?", j.left), left).Count(&count).Error
	return count, err
}

// rightJoin joins the relation onto the right-hand entity's table.
func (j joinTable) rightJoin(table string) string {
	return fmt.Sprintf("JOIN %s ON %s.%s = %s.id", j.name, j.name, j.right, table)
}

// leftJoin joins the relation onto the left-hand entity's table.
func (j joinTable) leftJoin(table string) string {
	return fmt.Sprintf("JOIN %s ON %s.%s = %s.id", j.name, j.name, j.left, table)
}
