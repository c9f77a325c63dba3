package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/jackc/pgx/v4"
	_ "github.com/jackc/pgx/v4/stdlib"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
	"github.com/onsi/gomega/gexec"
)

const schemaName = "jobdb_cli_integration"

// Run executes jobdb against the test schema, waiting for it to exit.
func Run(args ...string) *gexec.Session {
	command := exec.Command(binary, append([]string{"--schema", schemaName}, args...)...)
	// Stop a developer's .env from pointing tests at another database
	command.Env = append(os.Environ(), "JOBDB_ENV_FILE=/dev/null")

	By(fmt.Sprintf("running jobdb %v", args))
	session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
	Expect(err).NotTo(HaveOccurred())

	return session.Wait(30 * time.Second)
}

var _ = Describe("jobdb", func() {
	var (
		ctx    context.Context
		cancel func()
		db     *sql.DB
	)

	dropSchema := func() {
		_, err := db.ExecContext(ctx, fmt.Sprintf(`drop schema if exists %s cascade;`, pgx.Identifier{schemaName}.Sanitize()))
		Expect(err).NotTo(HaveOccurred(), "failed to drop test schema")
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), time.Minute)

		var err error
		db, err = sql.Open("pgx", "")
		Expect(err).NotTo(HaveOccurred(), "failed to connect to database")

		dropSchema()
	})

	AfterEach(func() {
		dropSchema()
		Expect(db.Close()).To(Succeed())
		cancel()
	})

	Describe("migrate", func() {
		It("installs and migrates a fresh database", func() {
			session := Run("migrate", "--install", "--verify")
			Expect(session).To(gexec.Exit(0))
			Expect(session.Err).To(gbytes.Say("migration.complete"))
			Expect(session.Err).To(gbytes.Say("verify.passed"))
		})

		It("does nothing when run twice", func() {
			Expect(Run("migrate", "--install")).To(gexec.Exit(0))
			Expect(Run("migrate", "--install", "--verify")).To(gexec.Exit(0))
		})

		It("logs each statement with --debug", func() {
			session := Run("--debug", "migrate", "--install")
			Expect(session).To(gexec.Exit(0))
			Expect(session.Err).To(gbytes.Say("event=migration.statement.apply"))
			Expect(session.Err).To(gbytes.Say("statement=skipped_jobs.create"))
		})

		It("fails without the baseline tables", func() {
			session := Run("migrate")
			Expect(session).To(gexec.Exit(1))
			Expect(session.Err).To(gbytes.Say("kind=missing_dependency"))
		})
	})

	Context("once migrated", func() {
		BeforeEach(func() {
			Expect(Run("migrate", "--install")).To(gexec.Exit(0))
		})

		It("prints the schema version", func() {
			session := Run("version")
			Expect(session).To(gexec.Exit(0))
			Expect(session.Out).To(gbytes.Say("20250301090000"))
		})

		It("prints migration status", func() {
			session := Run("status")
			Expect(session).To(gexec.Exit(0))
			Expect(session.Out).To(gbytes.Say(`20250301090000\s+decouple_job_snapshots\s+\d{4}-`))
		})

		It("verifies the schema", func() {
			session := Run("verify")
			Expect(session).To(gexec.Exit(0))
			Expect(session.Out).To(gbytes.Say("matches expected layout"))
		})

		It("refuses to roll back through goose", func() {
			session := Run("goose", "down")
			Expect(session).To(gexec.Exit(1))
			Expect(session.Err).To(gbytes.Say("forward-only and cannot be reversed"))

			session = Run("version")
			Expect(session).To(gexec.Exit(0))
			Expect(session.Out).To(gbytes.Say("20250301090000"))

			session = Run("verify")
			Expect(session).To(gexec.Exit(0))
			Expect(session.Out).To(gbytes.Say("matches expected layout"))
		})

		It("passes status through to goose", func() {
			Expect(Run("goose", "status")).To(gexec.Exit(0))
		})

		It("reports drift", func() {
			_, err := db.ExecContext(ctx, fmt.Sprintf(`drop index %s;`, pgx.Identifier{schemaName, "idx_jobs_user_id"}.Sanitize()))
			Expect(err).NotTo(HaveOccurred())

			session := Run("verify")
			Expect(session).To(gexec.Exit(1))
			Expect(session.Out).To(gbytes.Say(`jobs.idx_jobs_user_id: index does not exist`))
		})
	})

	Context("before anything is migrated", func() {
		schemaExists := func() bool {
			var exists bool
			err := db.QueryRowContext(ctx, `select exists (select 1 from information_schema.schemata where schema_name = $1);`, schemaName).Scan(&exists)
			Expect(err).NotTo(HaveOccurred())

			return exists
		}

		It("lists every migration as pending without writing", func() {
			session := Run("status")
			Expect(session).To(gexec.Exit(0))
			Expect(session.Out).To(gbytes.Say(`20250301090000\s+decouple_job_snapshots\s+pending`))
			Expect(schemaExists()).To(BeFalse())
		})

		It("prints version zero", func() {
			session := Run("version")
			Expect(session).To(gexec.Exit(0))
			Expect(session.Out).To(gbytes.Say("^0\n"))
			Expect(schemaExists()).To(BeFalse())
		})
	})

	Describe("print", func() {
		It("renders SQL without a database", func() {
			command := exec.Command(binary, "print", "--baseline", "--host", "unresolvable.invalid")
			session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
			Expect(err).NotTo(HaveOccurred())

			Eventually(session).Should(gexec.Exit(0))
			Expect(session.Out).To(gbytes.Say("create table if not exists users"))
			Expect(session.Out).To(gbytes.Say("begin;"))
			Expect(session.Out).To(gbytes.Say("create table if not exists skipped_jobs"))
		})
	})
})
