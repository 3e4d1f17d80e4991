package pgrealtime

// notifyFunctionSQL installs the trigger function that turns row changes into
// notifications on ChangesChannel. Payloads above the NOTIFY limit (8000 bytes) keep only
// the row ids and are flagged truncated.
const notifyFunctionSQL = `
CREATE OR REPLACE FUNCTION portfolio_notify_row_change() RETURNS trigger AS $$
DECLARE
	payload text;
BEGIN
	payload := json_build_object(
		'type', TG_OP,
		'schema', TG_TABLE_SCHEMA,
		'table', TG_TABLE_NAME,
		'new', CASE WHEN TG_OP = 'DELETE' THEN NULL ELSE row_to_json(NEW) END,
		'old', CASE WHEN TG_OP = 'INSERT' THEN NULL ELSE row_to_json(OLD) END,
		'commit_time', now()
	)::text;
	IF octet_length(payload) > 7900 THEN
		payload := json_build_object(
			'type', TG_OP,
			'schema', TG_TABLE_SCHEMA,
			'table', TG_TABLE_NAME,
			'new', CASE WHEN TG_OP = 'DELETE' THEN NULL ELSE json_build_object('id', to_jsonb(NEW)->'id') END,
			'old', CASE WHEN TG_OP = 'INSERT' THEN NULL ELSE json_build_object('id', to_jsonb(OLD)->'id') END,
			'commit_time', now(),
			'truncated', true
		)::text;
	END IF;
	PERFORM pg_notify('` + ChangesChannel + `', payload);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`

const watchTableSQL = `
DROP TRIGGER IF EXISTS portfolio_notify ON %[1]s;
CREATE TRIGGER portfolio_notify
	AFTER INSERT OR UPDATE OR DELETE ON %[1]s
	FOR EACH ROW EXECUTE FUNCTION portfolio_notify_row_change()`
