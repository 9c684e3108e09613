package storage

const schema = `
-- The 'slots' table is a small key-value store. Each slot holds one
-- serialized document, such as the learner's progress blob.
CREATE TABLE IF NOT EXISTS slots (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);
`
