// Package history persists a journal of finished conversion jobs and
// organize passes in a local SQLite database. The journal is purely
// informational: conversion and organization never depend on it, and an
// unavailable database only disables the history views.
package history
