package ddlkit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddlkit"
)

func TestTableCreateSQL(t *testing.T) {
	tbl := ddlkit.NewTable(ddlkit.MySQL, "posts").
		IfNotExists().
		Engine("InnoDB").
		Charset("utf8mb4").
		Comment("blog posts")
	tbl.Columns.BigInt("id").Unsigned().AutoIncrement()
	tbl.Columns.BigInt("user_id").Unsigned()
	tbl.Columns.Varchar("title", 200)
	tbl.Indexes.PrimaryKey("id")
	tbl.Indexes.ForeignKey("user_id").
		Constraint("fk_posts_user").
		References("users", "id").
		OnDelete("cascade")

	got, err := tbl.CreateSQL()
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS `posts` (\n"+
		" `id` bigint unsigned AUTO_INCREMENT NOT NULL,\n"+
		" `user_id` bigint unsigned NOT NULL,\n"+
		" `title` varchar(200) NOT NULL,\n"+
		" PRIMARY KEY (`id`),\n"+
		" CONSTRAINT `fk_posts_user` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`) ON DELETE CASCADE\n"+
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COMMENT='blog posts'", got)
}

func TestTableCreateSQLColumnsOnly(t *testing.T) {
	tbl := ddlkit.NewTable(ddlkit.MySQL, "tags").Collation("utf8mb4_bin")
	tbl.Columns.Varchar("name", 32).Primary()

	got, err := tbl.CreateSQL()
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE `tags` (\n `name` varchar(32) NOT NULL PRIMARY KEY\n) COLLATE=utf8mb4_bin", got)
	assert.Equal(t, "tags", tbl.Name())
}

func TestTableCreateSQLErrors(t *testing.T) {
	_, err := ddlkit.NewTable(ddlkit.MySQL, "").CreateSQL()
	assert.ErrorIs(t, err, ddlkit.ErrTableNameEmpty)

	_, err = ddlkit.NewTable(ddlkit.MySQL, "empty").CreateSQL()
	assert.ErrorIs(t, err, ddlkit.ErrNoColumns)
	assert.True(t, ddlkit.IsConfiguration(err))

	tbl := ddlkit.NewTable(ddlkit.MySQL, "comments")
	tbl.Columns.Add("body", "")
	_, err = tbl.CreateSQL()
	assert.ErrorIs(t, err, ddlkit.ErrTypeEmpty)
	assert.EqualError(t, err, "table comments: column body: type is empty")

	tbl = ddlkit.NewTable(ddlkit.MySQL, "comments")
	tbl.Columns.Int("post_id")
	tbl.Indexes.ForeignKey("post_id")
	_, err = tbl.CreateSQL()
	assert.ErrorIs(t, err, ddlkit.ErrReferencesNotSet)
}

func TestTableDropSQL(t *testing.T) {
	tbl := ddlkit.NewTable(ddlkit.MySQL, "posts")

	got, err := tbl.DropSQL(true)
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE IF EXISTS `posts`", got)

	got, err = tbl.DropSQL(false)
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE `posts`", got)

	_, err = ddlkit.NewTable(ddlkit.MySQL, "").DropSQL(true)
	assert.ErrorIs(t, err, ddlkit.ErrTableNameEmpty)
}

func TestAlterTableSQL(t *testing.T) {
	alter := ddlkit.NewAlterTable(ddlkit.MySQL, "posts")
	alter.AddColumn(ddlkit.NewColumn(ddlkit.MySQL, "slug").Type(ddlkit.TypeVarchar).Length(64))
	alter.AddIndex().UniqueKey("slug").Name("uq_posts_slug")
	alter.DropColumn("legacy").
		DropIndex("idx_old").
		DropForeignKey("fk_old").
		DropPrimaryKey()

	got, err := alter.SQL()
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE `posts`\n"+
		" ADD COLUMN `slug` varchar(64) NOT NULL,\n"+
		" ADD UNIQUE KEY `uq_posts_slug` (`slug`),\n"+
		" DROP COLUMN `legacy`,\n"+
		" DROP INDEX `idx_old`,\n"+
		" DROP FOREIGN KEY `fk_old`,\n"+
		" DROP PRIMARY KEY", got)
}

func TestAlterTableSQLRendersLatestState(t *testing.T) {
	alter := ddlkit.NewAlterTable(ddlkit.MySQL, "posts")
	def := alter.AddIndex()

	_, err := alter.SQL()
	assert.ErrorIs(t, err, ddlkit.ErrNoKeyConfigured)

	def.ForeignKey("user_id").References("users", "id").OnDelete("set null")
	got, err := alter.SQL()
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE `posts`\n ADD FOREIGN KEY (`user_id`) REFERENCES `users` (`id`) ON DELETE SET NULL", got)
}

func TestAlterTableSQLErrors(t *testing.T) {
	_, err := ddlkit.NewAlterTable(ddlkit.MySQL, "posts").SQL()
	assert.ErrorIs(t, err, ddlkit.ErrNoAlterSpecs)

	_, err = ddlkit.NewAlterTable(ddlkit.MySQL, "").DropPrimaryKey().SQL()
	assert.ErrorIs(t, err, ddlkit.ErrTableNameEmpty)

	_, err = ddlkit.NewAlterTable(ddlkit.MySQL, "posts").AddColumn(ddlkit.NewColumn(ddlkit.MySQL, "x")).SQL()
	assert.ErrorIs(t, err, ddlkit.ErrTypeEmpty)
	assert.EqualError(t, err, "alter table posts: column x: type is empty")
}
