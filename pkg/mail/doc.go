// Package mail composes a single email message, renders HTML bodies from
// template files and dispatches the message over SMTP or the local sendmail
// binary.
package mail
