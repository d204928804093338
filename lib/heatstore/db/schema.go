package db

const Schema = `
CREATE TABLE IF NOT EXISTS heat (
    heat_no INTEGER PRIMARY KEY,
    document TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cursor (
    id INTEGER PRIMARY KEY CHECK (id = 0),
    last_heat INTEGER NOT NULL
);
`
