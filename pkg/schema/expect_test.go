package schema_test

import (
	"bytes"

	"github.com/getajob/jobdb/pkg/schema"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"
)

func length(n int32) *int32 {
	return &n
}

func varchar(name string, nullable bool) schema.Column {
	return schema.Column{Name: name, DataType: "character varying", MaxLength: length(255), Nullable: nullable}
}

func expr(s string) *string {
	return &s
}

func text(name string) schema.Column {
	return schema.Column{Name: name, DataType: "text", Nullable: true}
}

// migratedCatalog looks like a schema that has had every migration applied.
func migratedCatalog() *schema.Catalog {
	return &schema.Catalog{
		Schema: "public",
		Tables: map[string]*schema.Table{
			"users": {
				Name: "users",
				Columns: []schema.Column{
					{Name: "id", DataType: "integer"},
					varchar("email", false),
					varchar("headline", true),
					text("summary"),
				},
				PrimaryKey: []string{"id"},
			},
			"jobs": {
				Name: "jobs",
				Columns: []schema.Column{
					{Name: "id", DataType: "integer"},
					varchar("title", false),
					{Name: "user_id", DataType: "integer", Nullable: true},
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					{Name: "jobs_user_id_fkey", Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id", DeleteRule: "NO ACTION"},
				},
				Indexes: []schema.Index{{Name: "jobs_pkey"}, {Name: "idx_jobs_user_id"}},
			},
			"applications": {
				Name: "applications",
				Columns: []schema.Column{
					{Name: "id", DataType: "integer"},
					{Name: "user_id", DataType: "integer"},
					varchar("job_title", true),
					varchar("company", true),
					varchar("location", true),
					text("job_url"),
					text("job_description"),
				},
			},
			"interview_sessions": {
				Name: "interview_sessions",
				Columns: []schema.Column{
					{Name: "id", DataType: "integer"},
					text("job_description"),
					varchar("job_title", true),
				},
			},
			"skipped_jobs": {
				Name: "skipped_jobs",
				Columns: []schema.Column{
					{Name: "id", DataType: "integer", Default: expr("nextval('skipped_jobs_id_seq'::regclass)")},
					{Name: "user_id", DataType: "integer"},
					varchar("title", false),
					varchar("company", false),
					varchar("location", true),
					{Name: "skipped_at", DataType: "timestamp without time zone", Nullable: true, Default: expr("CURRENT_TIMESTAMP")},
				},
				PrimaryKey: []string{"id"},
				Uniques: []schema.Unique{
					{Name: "skipped_jobs_user_id_title_company_location_key", Columns: []string{"user_id", "title", "company", "location"}},
				},
				ForeignKeys: []schema.ForeignKey{
					{Name: "skipped_jobs_user_id_fkey", Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id", DeleteRule: "CASCADE"},
				},
				Indexes: []schema.Index{{Name: "idx_skipped_jobs_user_id"}},
			},
		},
	}
}

var _ = Describe("Expectation", func() {
	var (
		catalog    *schema.Catalog
		violations []schema.Violation
	)

	BeforeEach(func() {
		catalog = migratedCatalog()
	})

	JustBeforeEach(func() {
		violations = schema.Expected().Verify(catalog)
	})

	violation := func(table, subject string) OmegaMatcher {
		return MatchFields(IgnoreExtras, Fields{
			"Table":   Equal(table),
			"Subject": Equal(subject),
		})
	}

	Context("with a fully migrated catalog", func() {
		It("finds nothing wrong", func() {
			Expect(violations).To(BeEmpty())
			Expect(violations).NotTo(BeNil())
		})
	})

	Context("when skipped_jobs is missing", func() {
		BeforeEach(func() {
			delete(catalog.Tables, "skipped_jobs")
		})

		It("reports the table once", func() {
			Expect(violations).To(ConsistOf(violation("skipped_jobs", "")))
		})
	})

	Context("when applications still has job_id", func() {
		BeforeEach(func() {
			table := catalog.Table("applications")
			table.Columns = append(table.Columns, schema.Column{Name: "job_id", DataType: "integer", Nullable: true})
		})

		It("reports the column", func() {
			Expect(violations).To(ConsistOf(violation("applications", "job_id")))
			Expect(violations[0].String()).To(Equal("applications.job_id: column should have been dropped"))
		})
	})

	Context("when a snapshot column is missing", func() {
		BeforeEach(func() {
			table := catalog.Table("interview_sessions")
			table.Columns = table.Columns[:2]
		})

		It("reports the missing column", func() {
			Expect(violations).To(ConsistOf(violation("interview_sessions", "job_title")))
		})
	})

	Context("when a column has the wrong shape", func() {
		BeforeEach(func() {
			catalog.Table("users").Columns[2] = schema.Column{Name: "headline", DataType: "character varying", MaxLength: length(100)}
		})

		It("reports length and nullability", func() {
			Expect(violations).To(HaveLen(2))
			for _, v := range violations {
				Expect(v).To(violation("users", "headline"))
			}
		})
	})

	Context("when skipped_at has lost its default", func() {
		BeforeEach(func() {
			catalog.Table("skipped_jobs").Column("skipped_at").Default = nil
		})

		It("reports the default", func() {
			Expect(violations).To(ConsistOf(violation("skipped_jobs", "skipped_at")))
			Expect(violations[0].Message).To(Equal("expected default CURRENT_TIMESTAMP, found none"))
		})
	})

	Context("when skipped_jobs.id is not a serial", func() {
		BeforeEach(func() {
			catalog.Table("skipped_jobs").Column("id").Default = expr("0")
		})

		It("reports the default", func() {
			Expect(violations).To(ConsistOf(violation("skipped_jobs", "id")))
		})
	})

	Context("when defaults differ only in case", func() {
		BeforeEach(func() {
			catalog.Table("skipped_jobs").Column("skipped_at").Default = expr("current_timestamp")
		})

		It("finds nothing wrong", func() {
			Expect(violations).To(BeEmpty())
		})
	})

	Context("when the skipped_jobs foreign key does not cascade", func() {
		BeforeEach(func() {
			catalog.Table("skipped_jobs").ForeignKeys[0].DeleteRule = "NO ACTION"
		})

		It("reports the delete rule", func() {
			Expect(violations).To(ConsistOf(violation("skipped_jobs", "user_id")))
			Expect(violations[0].Message).To(ContainSubstring("CASCADE"))
		})
	})

	Context("when the unique constraint covers different columns", func() {
		BeforeEach(func() {
			catalog.Table("skipped_jobs").Uniques[0].Columns = []string{"user_id", "title", "company"}
		})

		It("reports the missing constraint", func() {
			Expect(violations).To(ConsistOf(violation("skipped_jobs", "")))
		})
	})

	Context("when an index is missing", func() {
		BeforeEach(func() {
			catalog.Table("jobs").Indexes = []schema.Index{{Name: "jobs_pkey"}}
		})

		It("reports the index", func() {
			Expect(violations).To(ConsistOf(violation("jobs", "idx_jobs_user_id")))
		})
	})

	Context("when jobs has no foreign key", func() {
		BeforeEach(func() {
			catalog.Table("jobs").ForeignKeys = nil
		})

		It("reports the foreign key", func() {
			Expect(violations).To(ConsistOf(violation("jobs", "user_id")))
		})
	})
})

var _ = Describe("WriteReport", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	It("summarises a clean schema", func() {
		Expect(schema.WriteReport(&buf, "public", schema.Expected(), []schema.Violation{})).To(Succeed())
		Expect(buf.String()).To(Equal(
			"schema public matches expected layout (applications, interview_sessions, jobs, users, skipped_jobs)\n"))
	})

	It("lists every violation", func() {
		violations := []schema.Violation{
			{Table: "skipped_jobs", Message: "table does not exist"},
			{Table: "applications", Subject: "job_id", Message: "column should have been dropped"},
		}

		Expect(schema.WriteReport(&buf, "public", schema.Expected(), violations)).To(Succeed())
		Expect(buf.String()).To(Equal(`schema public has 2 violation(s):
  - skipped_jobs: table does not exist
  - applications.job_id: column should have been dropped
`))
	})
})
