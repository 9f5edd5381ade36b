// Package client is a Go client for the HTTP API served by package service.
package client
