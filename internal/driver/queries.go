package driver

// Every node carries the owning user's id. Timestamps are stored as RFC3339 strings.
const (
	GetContactsQuery = `
		MATCH (c:Contact {user_id: $user_id})
		OPTIONAL MATCH (c)-[:IN_GROUP]->(g:Group)
		RETURN c.id AS id, c.name AS name, c.last_name AS last_name,
			c.contact_frequency AS contact_frequency,
			c.created_at AS created_at, c.updated_at AS updated_at,
			collect({id: g.id, name: g.name}) AS groups
		ORDER BY c.name
	`

	GetContactQuery = `
		MATCH (c:Contact {id: $contact_id, user_id: $user_id})
		OPTIONAL MATCH (c)-[:IN_GROUP]->(g:Group)
		RETURN c.id AS id, c.name AS name, c.last_name AS last_name,
			c.contact_frequency AS contact_frequency,
			c.created_at AS created_at, c.updated_at AS updated_at,
			collect({id: g.id, name: g.name}) AS groups
	`

	GetConversationsQuery = `
		MATCH (c:Contact {user_id: $user_id})-[:HAD]->(v:Conversation)
		RETURN v.id AS id, c.id AS contact_id, v.content AS content, v.type AS type,
			v.timestamp AS timestamp, v.created_at AS created_at
	`

	GetRemindersQuery = `
		MATCH (c:Contact {user_id: $user_id})-[:HAS_REMINDER]->(r:Reminder)
		RETURN r.id AS id, c.id AS contact_id, r.conversation_id AS conversation_id,
			r.remind_at AS remind_at, r.status AS status, r.note AS note
	`

	GetContactRemindersQuery = `
		MATCH (c:Contact {id: $contact_id, user_id: $user_id})-[:HAS_REMINDER]->(r:Reminder)
		RETURN r.id AS id, c.id AS contact_id, r.conversation_id AS conversation_id,
			r.remind_at AS remind_at, r.status AS status, r.note AS note
	`

	GetImportantDatesQuery = `
		MATCH (c:Contact {user_id: $user_id})-[:HAS_DATE]->(d:ImportantDate)
		RETURN d.id AS id, c.id AS contact_id, d.label AS label, d.custom_label AS custom_label,
			d.date AS date, d.year AS year, d.recurring AS recurring
	`

	// SaveConversationQuery also touches the contact's updated_at.
	SaveConversationQuery = `
		MATCH (c:Contact {id: $contact_id, user_id: $user_id})
		CREATE (v:Conversation {id: $id, user_id: $user_id, content: $content, type: $type,
			timestamp: $timestamp, created_at: $created_at})
		CREATE (c)-[:HAD]->(v)
		SET c.updated_at = $created_at
		RETURN v.id AS id
	`

	CreateReminderQuery = `
		MATCH (c:Contact {id: $contact_id, user_id: $user_id})
		CREATE (r:Reminder {id: $id, user_id: $user_id, conversation_id: $conversation_id,
			remind_at: $remind_at, status: 'PENDING', note: $note})
		CREATE (c)-[:HAS_REMINDER]->(r)
		RETURN r.id AS id
	`

	// DismissRemindersQuery only touches PENDING rows, so replays are harmless.
	DismissRemindersQuery = `
		MATCH (c:Contact {id: $contact_id, user_id: $user_id})-[:HAS_REMINDER]->(r:Reminder)
		WHERE r.id IN $ids AND r.status = 'PENDING'
		SET r.status = 'DISMISSED'
		RETURN count(r) AS dismissed
	`
)
