// Package browser abstracts the navigation session the crawler drives.
//
// The navigator depends only on the Browser capability set: load a URL,
// enumerate the current link handles, locate a control by selector, check
// whether it is disabled, click it, submit a hidden server-side navigation
// command, and close the session. Keeping the surface this small makes the
// navigation state machine unit-testable against a scripted fake and keeps
// any concrete backend swappable.
//
// The package ships one concrete backend: Static, an HTTP client that
// parses server-rendered HTML and emulates ASP.NET-style postback
// navigation by resubmitting the page form with __EVENTTARGET and
// __EVENTARGUMENT set. Static is sufficient for portals whose pagination
// is server-side, which is exactly the class of site docpull targets.
package browser
