// Package migrations embeds the SQL migration scripts of the history store.
package migrations
