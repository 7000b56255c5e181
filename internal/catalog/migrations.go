package catalog

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
    id TEXT PRIMARY KEY,
    run_dir TEXT NOT NULL,
    run_name TEXT NOT NULL,
    spec_path TEXT NOT NULL,
    phase_count INTEGER NOT NULL DEFAULT 0,
    event_count INTEGER NOT NULL DEFAULT 0,
    converted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_conversions_run_dir ON conversions(run_dir);
CREATE INDEX IF NOT EXISTS idx_conversions_converted_at ON conversions(converted_at);

CREATE TABLE IF NOT EXISTS generations (
    id TEXT PRIMARY KEY,
    spec_path TEXT NOT NULL,
    flow_dir TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    file_count INTEGER NOT NULL DEFAULT 0,
    generated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_generations_flow_dir ON generations(flow_dir);
CREATE INDEX IF NOT EXISTS idx_generations_generated_at ON generations(generated_at);
`
