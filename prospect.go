// Package prospect provides a CLI-based prospecting assistant.
// It crawls a company website into a bounded, de-noised text corpus,
// asks an LLM to identify sales-relevant insights, drafts a cold outreach
// email, sends it through an SMTP relay and keeps a CRM-style log with
// follow-up scheduling.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, gemini/, sqlite/).
package prospect
