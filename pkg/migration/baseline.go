package migration

// Baseline creates the tables the job tracker had before schema versioning was
// introduced. Production databases already have them, which is why it is not registered
// with goose: operators opt in with Install for fresh databases, and tests use it to
// build the starting point the versioned scripts expect.
var Baseline = Script{
	Version: 0,
	Name:    "baseline",
	Statements: []Statement{
		{
			Name: "users.create",
			SQL: `
			create table if not exists users (
				id serial primary key,
				email varchar(255) unique not null,
				password_hash varchar(255) not null,
				name varchar(255) not null,
				phone varchar(50),
				location varchar(255),
				created_at timestamp default current_timestamp
			)
			`,
		},
		{
			Name: "jobs.create",
			SQL: `
			create table if not exists jobs (
				id serial primary key,
				job_id varchar(255) unique,
				title varchar(255) not null,
				company varchar(255) not null,
				location varchar(255),
				salary varchar(255),
				job_type varchar(100),
				description text,
				url text,
				source varchar(50),
				posted_date timestamp,
				scraped_at timestamp default current_timestamp
			)
			`,
		},
		{
			Name: "applications.create",
			SQL: `
			create table if not exists applications (
				id serial primary key,
				user_id integer references users(id) on delete cascade,
				job_id integer references jobs(id),
				status varchar(50) default 'applied',
				applied_date date default current_date,
				deadline date,
				follow_up_date date,
				notes text,
				created_at timestamp default current_timestamp,
				updated_at timestamp default current_timestamp
			)
			`,
		},
		{
			Name: "interview_sessions.create",
			SQL: `
			create table if not exists interview_sessions (
				id serial primary key,
				user_id integer references users(id) on delete cascade,
				job_id integer references jobs(id),
				created_at timestamp default current_timestamp
			)
			`,
		},
	},
}
