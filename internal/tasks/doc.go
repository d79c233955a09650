// Package tasks defines the task collection and the operations over it.
//
// A collection is persisted as a single document:
//
//	{
//	  "tasks": [
//	    {
//	      "id": 1,
//	      "title": "Buy milk",
//	      "priority": "high",
//	      "due": "2025-01-01",
//	      "status": "pending",
//	      "created_at": "2025-01-01T09:30:00Z"
//	    }
//	  ],
//	  "next_id": 2
//	}
//
// # Invariants
//
//   - ids are unique and next_id is strictly greater than every id
//   - priority is one of low, medium, high
//   - status is pending or completed, and only moves pending -> completed
//   - due, when set, is a YYYY-MM-DD date
//
// Operations mutate the collection in memory only. Persisting it is the job of
// the store package, which validates the collection on every load.
//
// # Errors
//
// Boundary failures are reported with sentinel errors (ErrInvalidPriority,
// ErrInvalidTitle, ErrInvalidDue, ErrInvalidStatus, ErrTaskNotFound) that are
// wrapped with context and can be matched with errors.Is.
package tasks
