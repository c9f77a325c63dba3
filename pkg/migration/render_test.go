package migration_test

import (
	"bytes"

	"github.com/getajob/jobdb/pkg/migration"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Render", func() {
	var (
		buf  bytes.Buffer
		opts migration.RenderOptions
	)

	script := migration.Script{
		Version: 42,
		Name:    "add_widgets",
		Statements: []migration.Statement{
			{Name: "widgets.create", SQL: `
			create table if not exists widgets (
				id serial primary key
			)
			`},
			{Name: "widgets.create_idx", SQL: `create index if not exists idx_widgets_id on widgets(id)`},
		},
	}

	JustBeforeEach(func() {
		buf.Reset()
		Expect(migration.Render(&buf, opts, script)).To(Succeed())
	})

	Context("with transactions", func() {
		BeforeEach(func() {
			opts = migration.RenderOptions{Transaction: true}
		})

		It("wraps the script in begin and commit", func() {
			Expect(buf.String()).To(Equal(`-- migration 42: add_widgets
begin;

-- widgets.create
create table if not exists widgets (
	id serial primary key
);

-- widgets.create_idx
create index if not exists idx_widgets_id on widgets(id);

commit;

`))
		})
	})

	Context("without transactions", func() {
		BeforeEach(func() {
			opts = migration.RenderOptions{}
		})

		It("renders bare statements", func() {
			Expect(buf.String()).NotTo(ContainSubstring("begin;"))
			Expect(buf.String()).NotTo(ContainSubstring("commit;"))
			Expect(buf.String()).To(ContainSubstring("-- widgets.create_idx\ncreate index if not exists idx_widgets_id on widgets(id);\n"))
		})
	})
})
