package taskstore

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    task TEXT NOT NULL,
    round INTEGER NOT NULL,
    nonce TEXT,
    brief TEXT,
    status TEXT NOT NULL DEFAULT 'received',
    repo_url TEXT,
    commit_sha TEXT,
    pages_url TEXT,
    error TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_task ON runs(task);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`
