package repository

import sq "github.com/Masterminds/squirrel"

// psql builds queries with Postgres-style $N placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
