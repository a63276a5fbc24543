// Package testutil contains helper builders used across tests to reduce
// boilerplate when populating a working memory (entities, triples, task
// chains, agent position). These helpers are not intended for production
// usage.
package testutil
