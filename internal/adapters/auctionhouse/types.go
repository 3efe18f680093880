package auctionhouse

// DTOs raw del backend de subastas. Solo se usan dentro de este paquete;
// la conversión a domain entities se hace en mapping.go. Los importes
// llegan como strings decimales (el servidor serializa Decimal como str).

// auctionDTO es el registro completo de GET /auctions/{slug}.
type auctionDTO struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Status      string   `json:"status"`
	StartTime   *string  `json:"start_time"`
	EndTime     *string  `json:"end_time"`
	CreatedAt   string   `json:"created_at"`
	Lots        []lotDTO `json:"lots"`
}

// lotDTO es un lote con todos sus campos, pricing config incluida.
type lotDTO struct {
	ID            string  `json:"id"`
	LotNumber     int     `json:"lot_number"`
	Name          string  `json:"name"`
	BasePrice     string  `json:"base_price"`
	MinIncrement  string  `json:"min_increment"`
	Currency      string  `json:"currency"`
	CurrentPrice  string  `json:"current_price"`
	CurrentLeader *string `json:"current_leader"`
	EndTime       *string `json:"end_time"`
	ImageURL      *string `json:"image_url"`
	Status        *string `json:"status"`
}

// vendorDTO es un vendor de la superficie admin.
type vendorDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Comment   *string `json:"comment"`
	CreatedAt string  `json:"created_at"`
}

// vendorRefDTO es la referencia embebida dentro de un participante.
type vendorRefDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// participantDTO es un participante de GET /admin/auctions/{slug}/participants.
type participantDTO struct {
	ID          string       `json:"id"`
	JoinURL     string       `json:"join_url"`
	InviteToken string       `json:"invite_token"`
	Vendor      vendorRefDTO `json:"vendor"`
}

// bidLogEntryDTO es una entrada de GET /admin/auctions/{slug}/bids.
type bidLogEntryDTO struct {
	ID         string `json:"id"`
	LotID      string `json:"lot_id"`
	LotNumber  int    `json:"lot_number"`
	LotName    string `json:"lot_name"`
	VendorName string `json:"vendor_name"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	PlacedAt   string `json:"placed_at"`
}

// --- request bodies ---

// statusRequest es el body de POST /admin/auctions/{slug}/status.
type statusRequest struct {
	Status string `json:"status"`
}

// lotCreateRequest es el body de POST /admin/auctions/{slug}/lots.
type lotCreateRequest struct {
	Name         string `json:"name"`
	BasePrice    string `json:"base_price"`
	MinIncrement string `json:"min_increment"`
	Currency     string `json:"currency"`
	ImageURL     string `json:"image_url,omitempty"`
}

// vendorRequest es el body de POST/PUT /admin/vendors.
type vendorRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Comment *string `json:"comment,omitempty"`
}

// participantCreateRequest es el body de POST /admin/auctions/{slug}/participants.
type participantCreateRequest struct {
	VendorID string `json:"vendor_id"`
}

// errorResponse es el shape de error del backend: {"detail": "..."}.
type errorResponse struct {
	Detail string `json:"detail"`
}
