package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 표현 계층은 이 코드를 기준으로 화면 처리를 분기함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // 잘못된 전화번호/비밀번호
	AuthSessionInvalid     = "AUTH_SESSION_INVALID"     // 세션 없음 또는 만료

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // 잘못된 입력

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound = "RESOURCE_NOT_FOUND" // 리소스 없음
	ResourceConflict = "RESOURCE_CONFLICT"  // 중복 또는 동시 수정 충돌

	// ==================== 재고 (STOCK_) ====================
	StockInsufficient = "STOCK_INSUFFICIENT" // 재고 부족
	StockUnavailable  = "STOCK_UNAVAILABLE"  // 장바구니 품목 재고 부족

	// ==================== 장바구니/주문 (CART_, ORDER_) ====================
	CartEmpty         = "CART_EMPTY"          // 빈 장바구니
	OrderInvalidState = "ORDER_INVALID_STATE" // 허용되지 않은 상태 전이

	// ==================== 내부 (INTERNAL_) ====================
	InternalDatabase = "INTERNAL_DATABASE" // 데이터베이스 오류
)
