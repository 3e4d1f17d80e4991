package content

// PostgresSchema creates the portfolio tables. Ids are text so rows read the same from
// every backend.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS site_settings (
	id           text PRIMARY KEY,
	title        text NOT NULL DEFAULT '',
	tagline      text NOT NULL DEFAULT '',
	about        text NOT NULL DEFAULT '',
	email        text NOT NULL DEFAULT '',
	show_contact boolean NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS projects (
	id         text PRIMARY KEY,
	title      text NOT NULL,
	summary    text NOT NULL DEFAULT '',
	url        text NOT NULL DEFAULT '',
	tags       text NOT NULL DEFAULT '',
	sort_order integer NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS education (
	id            text PRIMARY KEY,
	institution   text NOT NULL,
	qualification text NOT NULL DEFAULT '',
	period        text NOT NULL DEFAULT '',
	sort_order    integer NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS experience (
	id         text PRIMARY KEY,
	company    text NOT NULL,
	role       text NOT NULL DEFAULT '',
	period     text NOT NULL DEFAULT '',
	summary    text NOT NULL DEFAULT '',
	sort_order integer NOT NULL DEFAULT 0
);
`
