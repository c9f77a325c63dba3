package cmd

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("connectionSettings", func() {
	It("skips unset values", func() {
		Expect(connectionSettings{Host: "db", Schema: "public"}.connString()).To(Equal(`host='db'`))
	})

	It("quotes values", func() {
		settings := connectionSettings{
			Host:     "localhost",
			Port:     5433,
			Database: "jobs",
			User:     "jobdb",
			Password: `it's a \ secret`,
		}

		Expect(settings.connString()).To(Equal(
			`host='localhost' port='5433' dbname='jobs' user='jobdb' password='it\'s a \\ secret'`))
	})
})

var _ = Describe("buildDB", func() {
	It("pins the search_path to the schema", func() {
		db, cfg, err := buildDB("", connectionSettings{Host: "localhost", User: "jobdb", Schema: "tracker"})
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		Expect(cfg.Host).To(Equal("localhost"))
		Expect(cfg.User).To(Equal("jobdb"))
		Expect(cfg.RuntimeParams).To(HaveKeyWithValue("search_path", "tracker"))
	})

	It("prefers the database url", func() {
		db, cfg, err := buildDB("postgres://app@db.internal:6543/tracker", connectionSettings{Host: "ignored", Schema: "public"})
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		Expect(cfg.Host).To(Equal("db.internal"))
		Expect(cfg.Port).To(BeEquivalentTo(6543))
		Expect(cfg.Database).To(Equal("tracker"))
	})

	It("rejects malformed urls", func() {
		_, _, err := buildDB("postgres://%zz", connectionSettings{})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("runPrint", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	It("leaves out the baseline by default", func() {
		Expect(runPrint(&buf, true, false)).To(Succeed())
		Expect(buf.String()).NotTo(ContainSubstring("create table if not exists users"))
		Expect(buf.String()).To(ContainSubstring("create table if not exists skipped_jobs"))
	})

	It("puts the baseline first when asked", func() {
		Expect(runPrint(&buf, false, true)).To(Succeed())
		Expect(buf.String()).To(HavePrefix("-- migration 0: baseline\n"))
		Expect(buf.String()).NotTo(ContainSubstring("begin;"))
	})
})
