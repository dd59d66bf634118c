// Package model defines the core data types shared across hessq.
package model
