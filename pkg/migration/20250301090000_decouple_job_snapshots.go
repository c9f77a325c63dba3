package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up20250301090000, Down20250301090000)
	scripts = append(scripts, DecoupleJobSnapshots)
}

// DecoupleJobSnapshots stops applications and interview sessions pointing at rows in the
// jobs table, copying the job details they need onto themselves instead. Jobs become
// owned by a user, users gain profile fields, and skipped_jobs records listings a user has
// dismissed.
//
// Nothing backfills the new snapshot columns, so rows created before this migration lose
// the link to their job.
var DecoupleJobSnapshots = Script{
	Version: 20250301090000,
	Name:    "decouple_job_snapshots",
	Statements: []Statement{
		{
			Name: "applications.drop_job_id_fkey",
			SQL:  `alter table applications drop constraint if exists applications_job_id_fkey`,
		},
		{
			Name: "applications.drop_job_id",
			SQL:  `alter table applications drop column if exists job_id`,
		},
		{
			Name: "applications.add_job_snapshot",
			SQL: `
			alter table applications
			add column if not exists job_title varchar(255),
			add column if not exists company varchar(255),
			add column if not exists location varchar(255),
			add column if not exists job_url text,
			add column if not exists job_description text
			`,
		},
		{
			Name: "interview_sessions.drop_job_id",
			SQL:  `alter table interview_sessions drop column if exists job_id`,
		},
		{
			Name: "interview_sessions.add_job_snapshot",
			SQL: `
			alter table interview_sessions
			add column if not exists job_description text,
			add column if not exists job_title varchar(255)
			`,
		},
		{
			Name: "jobs.add_user_id",
			SQL:  `alter table jobs add column if not exists user_id integer references users(id)`,
		},
		{
			Name: "jobs.create_idx_jobs_user_id",
			SQL:  `create index if not exists idx_jobs_user_id on jobs(user_id)`,
		},
		{
			Name: "users.add_profile",
			SQL: `
			alter table users
			add column if not exists headline varchar(255),
			add column if not exists summary text
			`,
		},
		{
			Name: "skipped_jobs.create",
			SQL: `
			create table if not exists skipped_jobs (
				id serial primary key,
				user_id integer not null references users(id) on delete cascade,
				title varchar(255) not null,
				company varchar(255) not null,
				location varchar(255),
				skipped_at timestamp default current_timestamp,
				unique (user_id, title, company, location)
			)
			`,
		},
		{
			Name: "skipped_jobs.create_idx_skipped_jobs_user_id",
			SQL:  `create index if not exists idx_skipped_jobs_user_id on skipped_jobs(user_id)`,
		},
	},
}

func Up20250301090000(tx *sql.Tx) error {
	ctx, logger, schemaName := current()
	if err := pinSearchPath(ctx, tx, schemaName); err != nil {
		return err
	}

	return DecoupleJobSnapshots.Exec(ctx, logger, tx)
}

func Down20250301090000(tx *sql.Tx) error {
	return ErrIrreversible
}
